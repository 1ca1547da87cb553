package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-promise/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MembershipStore keeps follow relations in promise_memberships. An account
// must be loaded before it can be queried or written.
type MembershipStore struct {
	db   *bun.DB
	repo repository.Repository[*membershipRecord]

	mu     sync.Mutex
	loaded map[string]struct{}
}

func NewMembershipStore(db *bun.DB) (*MembershipStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*membershipRecord](db, membershipHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid membership repository wiring: %w", err)
		}
	}
	return &MembershipStore{
		db:     db,
		repo:   repo,
		loaded: map[string]struct{}{},
	}, nil
}

// Load checks the relation table is reachable for account and marks the
// account as loaded.
func (s *MembershipStore) Load(ctx context.Context, account string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: membership store is not configured")
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return fmt.Errorf("sqlstore: membership account is required")
	}
	if _, err := s.db.NewSelect().
		Model((*membershipRecord)(nil)).
		Where("?TableAlias.account = ?", account).
		Count(ctx); err != nil {
		return fmt.Errorf("sqlstore: load memberships for %s: %w", account, err)
	}

	s.mu.Lock()
	s.loaded[account] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *MembershipStore) Has(ctx context.Context, account string, relation string, member string) (bool, error) {
	if err := s.ensureLoaded(account); err != nil {
		return false, err
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account", "=", strings.TrimSpace(account)),
		repository.SelectBy("relation", "=", strings.TrimSpace(relation)),
		repository.SelectBy("member", "=", strings.TrimSpace(member)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// Add inserts the relation. Adding a relation that already exists is a no-op.
func (s *MembershipStore) Add(ctx context.Context, account string, relation string, member string) error {
	if err := s.ensureLoaded(account); err != nil {
		return err
	}
	account = strings.TrimSpace(account)
	relation = strings.TrimSpace(relation)
	member = strings.TrimSpace(member)
	if relation == "" || member == "" {
		return fmt.Errorf("sqlstore: membership relation and member are required")
	}

	now := time.Now().UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*membershipRecord)(nil)).
			Where("?TableAlias.account = ?", account).
			Where("?TableAlias.relation = ?", relation).
			Where("?TableAlias.member = ?", member).
			Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		_, err = s.repo.CreateTx(ctx, tx, &membershipRecord{
			ID:        uuid.NewString(),
			Account:   account,
			Relation:  relation,
			Member:    member,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
}

// Members lists the members of relation for account in insertion order.
func (s *MembershipStore) Members(ctx context.Context, account string, relation string) ([]string, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: membership store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account", "=", strings.TrimSpace(account)),
		repository.SelectBy("relation", "=", strings.TrimSpace(relation)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Member)
	}
	return out, nil
}

func (s *MembershipStore) ensureLoaded(account string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: membership store is not configured")
	}
	account = strings.TrimSpace(account)
	s.mu.Lock()
	_, ok := s.loaded[account]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("sqlstore: memberships for %q are not loaded", account)
	}
	return nil
}
