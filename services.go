package promise

import (
	"context"

	"github.com/goliatone/go-promise/core"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Health = core.Health

type Promise = core.Promise
type PromiseKind = core.PromiseKind
type FollowPromise = core.FollowPromise
type AccountAddPromise = core.AccountAddPromise
type TokenEntry = core.TokenEntry

type AccountAddition = core.AccountAddition
type AccountKey = core.AccountKey
type KeyPurpose = core.KeyPurpose

type TokenStore = core.TokenStore
type TokenIssuer = core.TokenIssuer
type MembershipSet = core.MembershipSet
type AccountKeyring = core.AccountKeyring

const (
	PromiseKindFollow     = core.PromiseKindFollow
	PromiseKindAccountAdd = core.PromiseKindAccountAdd
)

const (
	PromiseErrorInvalid            = core.PromiseErrorInvalid
	PromiseErrorInvalidToken       = core.PromiseErrorInvalidToken
	PromiseErrorCollaboratorFailed = core.PromiseErrorCollaboratorFailed
	PromiseErrorPersistenceFailed  = core.PromiseErrorPersistenceFailed
	PromiseErrorStoreNotReady      = core.PromiseErrorStoreNotReady
	PromiseErrorInternal           = core.PromiseErrorInternal
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithTokenStore        = core.WithTokenStore
	WithTokenIssuer       = core.WithTokenIssuer
	WithMembershipSet     = core.WithMembershipSet
	WithAccountKeyring    = core.WithAccountKeyring
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// Setup builds the service and starts loading the token store in the
// background. Operations wait for the load to finish.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(ctx, cfg, opts...)
}

func Manifest() []core.OperationDescriptor {
	return core.Manifest()
}
