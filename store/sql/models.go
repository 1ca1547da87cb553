package sqlstore

import (
	"time"

	"github.com/goliatone/go-promise/core"
	"github.com/uptrace/bun"
)

type membershipRecord struct {
	bun.BaseModel `bun:"table:promise_memberships,alias:pm"`

	ID        string    `bun:"id,pk"`
	Account   string    `bun:"account,notnull"`
	Relation  string    `bun:"relation,notnull"`
	Member    string    `bun:"member,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type accountKeyRecord struct {
	bun.BaseModel `bun:"table:promise_account_keys,alias:pak"`

	ID        string    `bun:"id,pk"`
	Account   string    `bun:"account,notnull"`
	Curve     string    `bun:"curve,notnull"`
	PublicKey string    `bun:"public_key,notnull"`
	Purpose   string    `bun:"purpose,notnull"`
	Consent   string    `bun:"consent,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *accountKeyRecord) toDomain() core.AccountKeyRecord {
	if r == nil {
		return core.AccountKeyRecord{}
	}
	return core.AccountKeyRecord{
		ID:      r.ID,
		Account: r.Account,
		Keypair: core.Keypair{
			Curve:  r.Curve,
			Public: r.PublicKey,
		},
		Purpose:   core.KeyPurpose(r.Purpose),
		Consent:   r.Consent,
		CreatedAt: r.CreatedAt,
	}
}
