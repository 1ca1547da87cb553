package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

type PromiseKind string

const (
	PromiseKindFollow     PromiseKind = "follow"
	PromiseKindAccountAdd PromiseKind = "account-add"
)

func (k PromiseKind) Valid() bool {
	switch k {
	case PromiseKindFollow, PromiseKindAccountAdd:
		return true
	default:
		return false
	}
}

// Promise is a deferred action that a single token authorizes. The set of
// implementations is closed; see FollowPromise and AccountAddPromise.
type Promise interface {
	Kind() PromiseKind
	BoundAccount() string
	sealed()
}

// FollowPromise authorizes one counterparty to be added to the follow set
// of Account.
type FollowPromise struct {
	Account string
}

func (FollowPromise) Kind() PromiseKind { return PromiseKindFollow }

func (p FollowPromise) BoundAccount() string { return p.Account }

func (FollowPromise) sealed() {}

// AccountAddPromise authorizes one key to be attached to Account.
type AccountAddPromise struct {
	Account string
}

func (AccountAddPromise) Kind() PromiseKind { return PromiseKindAccountAdd }

func (p AccountAddPromise) BoundAccount() string { return p.Account }

func (AccountAddPromise) sealed() {}

type promiseEnvelope struct {
	Kind    PromiseKind `json:"kind"`
	Account string      `json:"account"`
}

// ParsePromise validates an untyped candidate record and returns the typed
// promise it describes.
func ParsePromise(candidate map[string]any) (Promise, error) {
	if candidate == nil {
		return nil, newValidationError("promise", "promise must be a record")
	}
	rawKind, ok := candidate["kind"]
	if !ok {
		return nil, newValidationError("kind", "kind is required")
	}
	kindValue, ok := rawKind.(string)
	if !ok {
		return nil, newValidationError("kind", "kind must be a string")
	}
	kind := PromiseKind(strings.TrimSpace(kindValue))
	if !kind.Valid() {
		return nil, newValidationError("kind", fmt.Sprintf("unknown promise kind %q", kindValue))
	}

	account, err := requiredString(candidate, "account")
	if err != nil {
		return nil, err
	}

	switch kind {
	case PromiseKindFollow:
		return FollowPromise{Account: account}, nil
	case PromiseKindAccountAdd:
		return AccountAddPromise{Account: account}, nil
	}
	return nil, newValidationError("kind", fmt.Sprintf("unknown promise kind %q", kindValue))
}

// DecodePromise parses the wire form of a promise.
func DecodePromise(data []byte) (Promise, error) {
	var candidate map[string]any
	if err := json.Unmarshal(data, &candidate); err != nil {
		return nil, newValidationError("promise", "promise must be a JSON object")
	}
	return ParsePromise(candidate)
}

// EncodePromise returns the wire form of a validated promise.
func EncodePromise(promise Promise) ([]byte, error) {
	if err := ValidatePromise(promise); err != nil {
		return nil, err
	}
	return json.Marshal(promiseEnvelope{Kind: promise.Kind(), Account: promise.BoundAccount()})
}

// ValidatePromise checks a typed promise before it is stored.
func ValidatePromise(promise Promise) error {
	switch p := promise.(type) {
	case FollowPromise:
		if strings.TrimSpace(p.Account) == "" {
			return newValidationError("account", "account is required")
		}
	case *FollowPromise:
		if p == nil {
			return newValidationError("promise", "promise is required")
		}
		return ValidatePromise(*p)
	case AccountAddPromise:
		if strings.TrimSpace(p.Account) == "" {
			return newValidationError("account", "account is required")
		}
	case *AccountAddPromise:
		if p == nil {
			return newValidationError("promise", "promise is required")
		}
		return ValidatePromise(*p)
	case nil:
		return newValidationError("promise", "promise is required")
	default:
		return newValidationError("kind", fmt.Sprintf("unsupported promise type %T", promise))
	}
	return nil
}

// PromiseToMap returns the record form used by list queries and CLI output.
func PromiseToMap(promise Promise) map[string]any {
	if promise == nil {
		return map[string]any{}
	}
	return map[string]any{
		"kind":    string(promise.Kind()),
		"account": promise.BoundAccount(),
	}
}

func normalizePromise(promise Promise) Promise {
	switch p := promise.(type) {
	case *FollowPromise:
		return FollowPromise{Account: strings.TrimSpace(p.Account)}
	case *AccountAddPromise:
		return AccountAddPromise{Account: strings.TrimSpace(p.Account)}
	case FollowPromise:
		return FollowPromise{Account: strings.TrimSpace(p.Account)}
	case AccountAddPromise:
		return AccountAddPromise{Account: strings.TrimSpace(p.Account)}
	}
	return promise
}

func requiredString(candidate map[string]any, field string) (string, error) {
	raw, ok := candidate[field]
	if !ok || raw == nil {
		return "", newValidationError(field, field+" is required")
	}
	value, ok := raw.(string)
	if !ok {
		return "", newValidationError(field, field+" must be a string")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", newValidationError(field, field+" is required")
	}
	return value, nil
}
