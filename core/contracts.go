package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// MembershipSet is the relation store that follow promises write into.
// Load must be called for an account before Has or Add.
type MembershipSet interface {
	Load(ctx context.Context, account string) error
	Has(ctx context.Context, account string, relation string, member string) (bool, error)
	Add(ctx context.Context, account string, relation string, member string) error
}

type AccountKeyQuery struct {
	Account string
	Keypair Keypair
}

type AccountKeyAddition struct {
	Account string
	Keypair Keypair
	Purpose KeyPurpose
	Consent string
}

type AccountKeyRecord struct {
	ID        string
	Account   string
	Keypair   Keypair
	Purpose   KeyPurpose
	Consent   string
	CreatedAt time.Time
}

// AccountKeyring attaches keys to accounts. Consent verification belongs to
// the keyring.
type AccountKeyring interface {
	Has(ctx context.Context, query AccountKeyQuery) (bool, error)
	Add(ctx context.Context, addition AccountKeyAddition) (AccountKeyRecord, error)
}

type CollaboratorProvider interface {
	MembershipSet() MembershipSet
	AccountKeyring() AccountKeyring
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (CollaboratorProvider, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
