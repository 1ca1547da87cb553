package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-promise/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const membershipCacheKeyPrefix = "go-promise::membership::v1"

// CachedMembershipStore caches Has lookups in front of a membership set.
// Add evicts the affected key after the base write succeeds.
type CachedMembershipStore struct {
	base  core.MembershipSet
	cache repositorycache.CacheService
}

func NewCachedMembershipStore(
	base core.MembershipSet,
	cacheService repositorycache.CacheService,
) (*CachedMembershipStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base membership set is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: membership cache service is required")
	}
	return &CachedMembershipStore{base: base, cache: cacheService}, nil
}

// MembershipCacheKey returns go-promise::membership::v1::<account>::<relation>::<member>
// with each segment URL-path escaped.
func MembershipCacheKey(account string, relation string, member string) (string, error) {
	segments := []string{
		strings.TrimSpace(account),
		strings.TrimSpace(relation),
		strings.TrimSpace(member),
	}
	for i, segment := range segments {
		if segment == "" {
			return "", fmt.Errorf("sqlstore: membership cache key segments are required")
		}
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(append([]string{membershipCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedMembershipStore) Load(ctx context.Context, account string) error {
	if s == nil || s.base == nil {
		return fmt.Errorf("sqlstore: cached membership store is not configured")
	}
	return s.base.Load(ctx, account)
}

func (s *CachedMembershipStore) Has(ctx context.Context, account string, relation string, member string) (bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return false, fmt.Errorf("sqlstore: cached membership store is not configured")
	}
	cacheKey, err := MembershipCacheKey(account, relation, member)
	if err != nil {
		return false, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (bool, error) {
		return s.base.Has(ctx, account, relation, member)
	})
}

func (s *CachedMembershipStore) Add(ctx context.Context, account string, relation string, member string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached membership store is not configured")
	}
	cacheKey, err := MembershipCacheKey(account, relation, member)
	if err != nil {
		return err
	}
	if err := s.base.Add(ctx, account, relation, member); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.MembershipSet = (*CachedMembershipStore)(nil)
