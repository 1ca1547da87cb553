package core

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestParsePromise_AcceptsKnownKinds(t *testing.T) {
	promise, err := ParsePromise(map[string]any{"kind": "follow", "account": "acct1"})
	if err != nil {
		t.Fatalf("parse follow: %v", err)
	}
	follow, ok := promise.(FollowPromise)
	if !ok {
		t.Fatalf("expected FollowPromise, got %T", promise)
	}
	if follow.Account != "acct1" {
		t.Fatalf("expected account acct1, got %q", follow.Account)
	}

	promise, err = ParsePromise(map[string]any{"kind": "account-add", "account": "acct2"})
	if err != nil {
		t.Fatalf("parse account-add: %v", err)
	}
	if promise.Kind() != PromiseKindAccountAdd || promise.BoundAccount() != "acct2" {
		t.Fatalf("unexpected account-add promise %#v", promise)
	}
}

func TestParsePromise_RejectsInvalidCandidates(t *testing.T) {
	cases := []struct {
		name      string
		candidate map[string]any
		field     string
	}{
		{name: "nil", candidate: nil, field: "promise"},
		{name: "missing kind", candidate: map[string]any{"account": "acct1"}, field: "kind"},
		{name: "non string kind", candidate: map[string]any{"kind": 7, "account": "acct1"}, field: "kind"},
		{name: "unknown kind", candidate: map[string]any{"kind": "unknown"}, field: "kind"},
		{name: "account-add without account", candidate: map[string]any{"kind": "account-add"}, field: "account"},
		{name: "follow without account", candidate: map[string]any{"kind": "follow"}, field: "account"},
		{name: "non string account", candidate: map[string]any{"kind": "follow", "account": 12}, field: "account"},
		{name: "blank account", candidate: map[string]any{"kind": "follow", "account": "  "}, field: "account"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePromise(tc.candidate)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !IsValidationError(err) {
				t.Fatalf("expected validation error code, got %v", err)
			}
			var richErr *goerrors.Error
			if !goerrors.As(err, &richErr) {
				t.Fatalf("expected go-errors type, got %T", err)
			}
			validation := richErr.AllValidationErrors()
			if len(validation) == 0 || validation[0].Field != tc.field {
				t.Fatalf("expected field error for %q, got %#v", tc.field, validation)
			}
		})
	}
}

func TestEncodePromise_WireForm(t *testing.T) {
	data, err := EncodePromise(FollowPromise{Account: "acct1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := string(data); got != `{"kind":"follow","account":"acct1"}` {
		t.Fatalf("unexpected wire form %s", got)
	}

	decoded, err := DecodePromise(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != (FollowPromise{Account: "acct1"}) {
		t.Fatalf("unexpected decoded promise %#v", decoded)
	}
}

func TestDecodePromise_RejectsNonObjects(t *testing.T) {
	if _, err := DecodePromise([]byte(`["follow"]`)); !IsValidationError(err) {
		t.Fatalf("expected validation error for array payload, got %v", err)
	}
}

func TestValidatePromise_RejectsNilAndEmptyAccount(t *testing.T) {
	if err := ValidatePromise(nil); !IsValidationError(err) {
		t.Fatalf("expected validation error for nil promise, got %v", err)
	}
	if err := ValidatePromise(AccountAddPromise{}); !IsValidationError(err) {
		t.Fatalf("expected validation error for empty account, got %v", err)
	}
	var missing *FollowPromise
	if err := ValidatePromise(missing); !IsValidationError(err) {
		t.Fatalf("expected validation error for nil pointer, got %v", err)
	}
	if err := ValidatePromise(&FollowPromise{Account: "acct1"}); err != nil {
		t.Fatalf("expected pointer promise to validate, got %v", err)
	}
}
