package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-promise/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db    *bun.DB
	cache repositorycache.CacheService

	membershipStore *MembershipStore
	accountKeyStore *AccountKeyStore
	membershipSet   core.MembershipSet
}

type FactoryOption func(*RepositoryFactory)

// WithMembershipCache puts a CachedMembershipStore in front of the SQL
// membership store.
func WithMembershipCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cache = cacheService
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(factory)
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.CollaboratorProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.membershipStore != nil && f.accountKeyStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) MembershipSet() core.MembershipSet {
	if f == nil {
		return nil
	}
	return f.membershipSet
}

func (f *RepositoryFactory) AccountKeyring() core.AccountKeyring {
	if f == nil || f.accountKeyStore == nil {
		return nil
	}
	return f.accountKeyStore
}

func (f *RepositoryFactory) MembershipStore() *MembershipStore {
	if f == nil {
		return nil
	}
	return f.membershipStore
}

func (f *RepositoryFactory) AccountKeyStore() *AccountKeyStore {
	if f == nil {
		return nil
	}
	return f.accountKeyStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	membershipStore, err := NewMembershipStore(f.db)
	if err != nil {
		return err
	}
	accountKeyStore, err := NewAccountKeyStore(f.db)
	if err != nil {
		return err
	}
	f.membershipStore = membershipStore
	f.accountKeyStore = accountKeyStore
	f.membershipSet = membershipStore

	if f.cache != nil {
		cached, err := NewCachedMembershipStore(membershipStore, f.cache)
		if err != nil {
			return err
		}
		f.membershipSet = cached
	}
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
