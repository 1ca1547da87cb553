package query

import "strings"

const (
	TypeHealth       = "promise.query.health"
	TypeListPromises = "promise.query.list"
	TypeGetPromise   = "promise.query.get"
)

type HealthMessage struct{}

func (HealthMessage) Type() string { return TypeHealth }

func (HealthMessage) Validate() error { return nil }

type ListPromisesMessage struct {
	// Kind narrows the listing to one promise kind when set.
	Kind string
}

func (ListPromisesMessage) Type() string { return TypeListPromises }

func (m ListPromisesMessage) Validate() error {
	kind := strings.TrimSpace(m.Kind)
	if kind == "" {
		return nil
	}
	switch kind {
	case "follow", "account-add":
		return nil
	}
	return queryValidationError("kind", "kind must be follow or account-add")
}

type GetPromiseMessage struct {
	Token string
}

func (GetPromiseMessage) Type() string { return TypeGetPromise }

func (m GetPromiseMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return queryValidationError("token", "token is required")
	}
	return nil
}
