package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-promise/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccountKeyStore struct {
	db   *bun.DB
	repo repository.Repository[*accountKeyRecord]
}

func NewAccountKeyStore(db *bun.DB) (*AccountKeyStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accountKeyRecord](db, accountKeyHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account key repository wiring: %w", err)
		}
	}
	return &AccountKeyStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *AccountKeyStore) Has(ctx context.Context, query core.AccountKeyQuery) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("sqlstore: account key store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account", "=", strings.TrimSpace(query.Account)),
		repository.SelectBy("curve", "=", strings.TrimSpace(query.Keypair.Curve)),
		repository.SelectBy("public_key", "=", strings.TrimSpace(query.Keypair.Public)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// Add attaches the keypair to the account. The unique constraint on
// (account, curve, public_key) rejects a key that is already attached.
func (s *AccountKeyStore) Add(ctx context.Context, addition core.AccountKeyAddition) (core.AccountKeyRecord, error) {
	if s == nil || s.repo == nil {
		return core.AccountKeyRecord{}, fmt.Errorf("sqlstore: account key store is not configured")
	}
	account := strings.TrimSpace(addition.Account)
	if account == "" {
		return core.AccountKeyRecord{}, fmt.Errorf("sqlstore: account key account is required")
	}
	if strings.TrimSpace(addition.Consent) == "" {
		return core.AccountKeyRecord{}, fmt.Errorf("sqlstore: account key consent is required")
	}
	if strings.TrimSpace(addition.Keypair.Curve) == "" || strings.TrimSpace(addition.Keypair.Public) == "" {
		return core.AccountKeyRecord{}, fmt.Errorf("sqlstore: account key keypair is required")
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &accountKeyRecord{
		ID:        uuid.NewString(),
		Account:   account,
		Curve:     strings.TrimSpace(addition.Keypair.Curve),
		PublicKey: strings.TrimSpace(addition.Keypair.Public),
		Purpose:   string(addition.Purpose),
		Consent:   addition.Consent,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return core.AccountKeyRecord{}, err
	}
	return created.toDomain(), nil
}

func (s *AccountKeyStore) Keys(ctx context.Context, account string) ([]core.AccountKeyRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: account key store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account", "=", strings.TrimSpace(account)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.AccountKeyRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
