package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-promise/core"
)

type MutatingService interface {
	Create(ctx context.Context, candidate map[string]any) (string, error)
	CreatePromise(ctx context.Context, promise core.Promise) (string, error)
	Follow(ctx context.Context, token string, member string) (bool, error)
	AccountAdd(ctx context.Context, token string, addition core.AccountAddition) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type ReloadingService interface {
	Reload(ctx context.Context) error
}

type CreateResult struct {
	Token string `json:"token"`
}

type RedemptionResult struct {
	Added bool `json:"added"`
}

type CreateCommand struct {
	service MutatingService
}

func NewCreateCommand(service MutatingService) *CreateCommand {
	return &CreateCommand{service: service}
}

func (c *CreateCommand) Execute(ctx context.Context, msg CreateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create service is required")
	}
	var (
		token string
		err   error
	)
	if msg.Promise != nil {
		token, err = c.service.CreatePromise(ctx, msg.Promise)
	} else {
		token, err = c.service.Create(ctx, msg.Candidate)
	}
	if err != nil {
		return err
	}
	storeResult(ctx, CreateResult{Token: token})
	return nil
}

type FollowCommand struct {
	service MutatingService
}

func NewFollowCommand(service MutatingService) *FollowCommand {
	return &FollowCommand{service: service}
}

func (c *FollowCommand) Execute(ctx context.Context, msg FollowMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: follow service is required")
	}
	added, err := c.service.Follow(ctx, msg.Token, msg.Member)
	if err != nil {
		return err
	}
	storeResult(ctx, RedemptionResult{Added: added})
	return nil
}

type AccountAddCommand struct {
	service MutatingService
}

func NewAccountAddCommand(service MutatingService) *AccountAddCommand {
	return &AccountAddCommand{service: service}
}

func (c *AccountAddCommand) Execute(ctx context.Context, msg AccountAddMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account add service is required")
	}
	added, err := c.service.AccountAdd(ctx, msg.Token, msg.Addition)
	if err != nil {
		return err
	}
	storeResult(ctx, RedemptionResult{Added: added})
	return nil
}

type RevokeCommand struct {
	service MutatingService
}

func NewRevokeCommand(service MutatingService) *RevokeCommand {
	return &RevokeCommand{service: service}
}

func (c *RevokeCommand) Execute(ctx context.Context, msg RevokeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revoke service is required")
	}
	return c.service.Revoke(ctx, msg.Token)
}

type ReloadCommand struct {
	service ReloadingService
}

func NewReloadCommand(service ReloadingService) *ReloadCommand {
	return &ReloadCommand{service: service}
}

func (c *ReloadCommand) Execute(ctx context.Context, _ ReloadMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reload service is required")
	}
	return c.service.Reload(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
