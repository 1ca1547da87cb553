package command

import (
	"strings"

	"github.com/goliatone/go-promise/core"
)

const (
	TypeCreate     = "promise.command.create"
	TypeFollow     = "promise.command.follow"
	TypeAccountAdd = "promise.command.account_add"
	TypeRevoke     = "promise.command.revoke"
	TypeReload     = "promise.command.reload"
)

// CreateMessage carries either a typed Promise or an untyped Candidate
// record. Promise wins when both are set.
type CreateMessage struct {
	Promise   core.Promise
	Candidate map[string]any
}

func (CreateMessage) Type() string { return TypeCreate }

func (m CreateMessage) Validate() error {
	if m.Promise == nil && m.Candidate == nil {
		return commandValidationError("promise", "promise is required")
	}
	return nil
}

type FollowMessage struct {
	Token  string
	Member string
}

func (FollowMessage) Type() string { return TypeFollow }

func (m FollowMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	if strings.TrimSpace(m.Member) == "" {
		return commandValidationError("member", "member id is required")
	}
	return nil
}

type AccountAddMessage struct {
	Token    string
	Addition core.AccountAddition
}

func (AccountAddMessage) Type() string { return TypeAccountAdd }

func (m AccountAddMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	return m.Addition.Validate()
}

type RevokeMessage struct {
	Token string
}

func (RevokeMessage) Type() string { return TypeRevoke }

func (m RevokeMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "token is required")
	}
	return nil
}

type ReloadMessage struct{}

func (ReloadMessage) Type() string { return TypeReload }

func (ReloadMessage) Validate() error { return nil }
