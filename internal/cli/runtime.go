package cli

import (
	"context"
	"path/filepath"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	promise "github.com/goliatone/go-promise"
	"github.com/goliatone/go-promise/adapters/gologger"
	"github.com/goliatone/go-promise/core"
	sqlstore "github.com/goliatone/go-promise/store/sql"
)

const defaultDatabaseFile = "promise.db"

// runtime is one CLI invocation's service, facade and database client.
type runtime struct {
	service *promise.Service
	facade  *promise.Facade
	client  *persistence.Client
}

func openRuntime(ctx context.Context, opts *RootOptions, formatter *OutputFormatter) (*runtime, error) {
	dir := strings.TrimSpace(opts.Dir)
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		base := dir
		if base == "" {
			base = "."
		}
		dsn = filepath.Join(base, defaultDatabaseFile)
	}
	formatter.VerboseLog("opening %s collaborators", opts.Driver)

	client, err := sqlstore.OpenClient(ctx, sqlstore.ClientConfig{
		Driver: opts.Driver,
		DSN:    dsn,
		Debug:  opts.Verbose,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open collaborator database", err)
	}

	loaders := []core.RawConfigLoader{}
	if path := strings.TrimSpace(opts.Config); path != "" {
		loaders = append(loaders, core.NewFileConfigLoader(path))
	}
	loaders = append(loaders, core.NewEnvConfigLoader())

	serviceOpts := []promise.Option{
		promise.WithConfigProvider(core.NewCfgxConfigProvider(core.ChainConfigLoaders(loaders...))),
		promise.WithPersistenceClient(client),
		promise.WithRepositoryFactory(sqlstore.NewRepositoryFactory()),
	}
	if opts.Verbose {
		serviceOpts = append(serviceOpts, promise.WithLoggerProvider(gologger.ConsoleProvider{Verbose: true}))
	}

	svc, err := promise.NewService(promise.Config{Path: dir}, serviceOpts...)
	if err != nil {
		_ = client.Close()
		return nil, WrapExitError(ExitCommandError, "build promise service", err)
	}
	if err := svc.Load(ctx); err != nil {
		_ = client.Close()
		return nil, WrapExitError(ExitCommandError, "load promise file", err)
	}
	formatter.VerboseLog("loaded %s", svc.Config().StorePath())

	facade, err := promise.NewFacade(svc)
	if err != nil {
		_ = client.Close()
		return nil, WrapExitError(ExitCommandError, "build facade", err)
	}
	return &runtime{service: svc, facade: facade, client: client}, nil
}

func (r *runtime) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
