package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service issues, persists and redeems promise tokens. Every public
// operation waits for the token store to load before it runs, and every
// mutation is persisted before it reports success.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	store             TokenStore
	issuer            TokenIssuer
	membershipSet     MembershipSet
	accountKeyring    AccountKeyring
	gate              *LoadGate

	// mu serializes every read-modify-write of the token store, including the
	// collaborator check-then-add performed during redemption. Collaborators
	// may hold it for as long as their IO takes, so it is a plain mutex with
	// no lock-wait watchdog.
	mu sync.Mutex
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	TokenStore        TokenStore
	TokenIssuer       TokenIssuer
	MembershipSet     MembershipSet
	AccountKeyring    AccountKeyring
}

// NewService resolves configuration and dependencies. The token store is not
// read until Start or Load is called; operations issued before then wait.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("promise", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("promise"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.tokenStore == nil {
		builder.tokenStore = NewFileTokenStore(finalConfig.StorePath())
	}
	if builder.tokenIssuer == nil {
		builder.tokenIssuer = NewRandomTokenIssuer(finalConfig.TokenBytes)
	}

	if (builder.membershipSet == nil || builder.accountKeyring == nil) && builder.repositoryFactory != nil {
		var collaborators CollaboratorProvider
		if factory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := factory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			collaborators = built
		} else if provider, ok := builder.repositoryFactory.(CollaboratorProvider); ok {
			collaborators = provider
		}
		if collaborators != nil {
			if builder.membershipSet == nil {
				builder.membershipSet = collaborators.MembershipSet()
			}
			if builder.accountKeyring == nil {
				builder.accountKeyring = collaborators.AccountKeyring()
			}
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		store:             builder.tokenStore,
		issuer:            builder.tokenIssuer,
		membershipSet:     builder.membershipSet,
		accountKeyring:    builder.accountKeyring,
		gate:              NewLoadGate(),
	}, nil
}

// Setup builds the service and starts loading the token store in the
// background.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	svc, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	svc.Start(ctx)
	return svc, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		TokenStore:        s.store,
		TokenIssuer:       s.issuer,
		MembershipSet:     s.membershipSet,
		AccountKeyring:    s.accountKeyring,
	}
}

// Start loads the token store in the background and returns immediately.
func (s *Service) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		_ = s.loadStore(context.WithoutCancel(ctx), "load")
	}()
}

// Load reads the token store synchronously and opens the load gate on
// success. A failure leaves waiting operations blocked.
func (s *Service) Load(ctx context.Context) error {
	return s.loadStore(ctx, "load")
}

// Reload re-reads the token store from disk, replacing the in-memory
// mapping. It is the recovery path after a failed load.
func (s *Service) Reload(ctx context.Context) error {
	return s.loadStore(ctx, "reload")
}

// Ready is closed once the token store has loaded.
func (s *Service) Ready() <-chan struct{} {
	return s.gate.Ready()
}

func (s *Service) loadStore(ctx context.Context, operation string) (err error) {
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"path": s.config.StorePath()}
	defer func() {
		s.observeOperation(ctx, startedAt, operation, err, fields)
	}()

	if s.store == nil {
		err = s.mapError(fmt.Errorf("core: token store is not configured"))
		s.gate.Fail(err)
		return err
	}

	s.mu.Lock()
	loadErr := s.store.Load(ctx)
	count := s.store.Len()
	s.mu.Unlock()

	if loadErr != nil {
		err = newPersistenceError(loadErr, operation)
		s.gate.Fail(err)
		s.recordCounter(ctx, "promise.load.failed", 1, map[string]string{"operation": operation})
		return err
	}
	fields["promises"] = count
	s.gate.Open(time.Now().UTC())
	return nil
}

func (s *Service) awaitLoaded(ctx context.Context, operation string) error {
	if s == nil || s.gate == nil {
		return fmt.Errorf("core: service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.gate.Wait(ctx); err != nil {
		return newNotReadyError(err, operation)
	}
	return nil
}

type Health struct {
	State     LoadState `json:"state"`
	Error     string    `json:"error,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	Path      string    `json:"path"`
	Promises  int       `json:"promises"`
	Available bool      `json:"available"`
}

// Health reports the load state without waiting on the gate.
func (s *Service) Health() Health {
	if s == nil || s.gate == nil {
		return Health{State: LoadStateUnloaded}
	}
	status := s.gate.Status()
	health := Health{
		State:     status.State,
		LoadedAt:  status.LoadedAt,
		Path:      s.config.StorePath(),
		Available: status.State == LoadStateReady,
	}
	if status.Err != nil {
		health.Error = status.Err.Error()
	}
	if health.Available && s.store != nil {
		health.Promises = s.store.Len()
	}
	return health
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func trimToken(token string) string {
	return strings.TrimSpace(token)
}
