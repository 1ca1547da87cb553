package promise

import (
	"fmt"

	promisecommand "github.com/goliatone/go-promise/command"
	promisequery "github.com/goliatone/go-promise/query"
)

type CommandQueryService interface {
	promisecommand.MutatingService
	promisecommand.ReloadingService
	promisequery.HealthReader
	promisequery.PromiseReader
}

type Commands struct {
	Create     *promisecommand.CreateCommand
	Follow     *promisecommand.FollowCommand
	AccountAdd *promisecommand.AccountAddCommand
	Revoke     *promisecommand.RevokeCommand
	Reload     *promisecommand.ReloadCommand
}

type Queries struct {
	Health       *promisequery.HealthQuery
	ListPromises *promisequery.ListPromisesQuery
	GetPromise   *promisequery.GetPromiseQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("promise: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Create:     promisecommand.NewCreateCommand(service),
		Follow:     promisecommand.NewFollowCommand(service),
		AccountAdd: promisecommand.NewAccountAddCommand(service),
		Revoke:     promisecommand.NewRevokeCommand(service),
		Reload:     promisecommand.NewReloadCommand(service),
	}
	facade.queries = Queries{
		Health:       promisequery.NewHealthQuery(service),
		ListPromises: promisequery.NewListPromisesQuery(service),
		GetPromise:   promisequery.NewGetPromiseQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
var _ CommandQueryService = (*Service)(nil)
