package core

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestPromiseErrorMapper_AssignsStableCodes(t *testing.T) {
	mapped := promiseErrorMapper(ErrInvalidToken)
	if mapped.TextCode != PromiseErrorInvalidToken {
		t.Fatalf("expected invalid token text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", mapped.Code)
	}

	mapped = promiseErrorMapper(stderrors.New("core: follow_relation is required"))
	if mapped.TextCode != PromiseErrorInvalid {
		t.Fatalf("expected invalid text code, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", mapped.Category)
	}

	mapped = promiseErrorMapper(context.DeadlineExceeded)
	if mapped.TextCode != PromiseErrorStoreNotReady {
		t.Fatalf("expected not ready text code, got %q", mapped.TextCode)
	}
}

func TestPromiseErrorMapper_PreservesRichErrors(t *testing.T) {
	source := goerrors.New("keyring offline", goerrors.CategoryExternal)
	mapped := promiseErrorMapper(source)
	if mapped != source {
		t.Fatalf("expected the same envelope to be returned")
	}
	if mapped.TextCode != PromiseErrorCollaboratorFailed {
		t.Fatalf("expected collaborator text code, got %q", mapped.TextCode)
	}
	if mapped.Code == 0 {
		t.Fatalf("expected http status code on mapped error")
	}
}

func TestErrorConstructors_Envelopes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		textCode string
		code     int
		check    func(error) bool
	}{
		{
			name:     "validation",
			err:      newValidationError("kind", "kind is required"),
			category: goerrors.CategoryValidation,
			textCode: PromiseErrorInvalid,
			code:     http.StatusBadRequest,
			check:    IsValidationError,
		},
		{
			name:     "invalid token",
			err:      newInvalidTokenError("follow"),
			category: goerrors.CategoryNotFound,
			textCode: PromiseErrorInvalidToken,
			code:     http.StatusNotFound,
			check:    IsInvalidTokenError,
		},
		{
			name:     "collaborator",
			err:      newCollaboratorError(stderrors.New("locked"), "follow", "add", "acct1"),
			category: goerrors.CategoryExternal,
			textCode: PromiseErrorCollaboratorFailed,
			code:     http.StatusBadGateway,
			check:    IsCollaboratorError,
		},
		{
			name:     "persistence",
			err:      newPersistenceError(stderrors.New("disk full"), "create"),
			category: goerrors.CategoryInternal,
			textCode: PromiseErrorPersistenceFailed,
			code:     http.StatusInternalServerError,
			check:    IsPersistenceError,
		},
		{
			name:     "not ready",
			err:      newNotReadyError(context.Canceled, "revoke"),
			category: goerrors.CategoryOperation,
			textCode: PromiseErrorStoreNotReady,
			code:     http.StatusServiceUnavailable,
			check:    IsNotReadyError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rich *goerrors.Error
			if !goerrors.As(tc.err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T", tc.err)
			}
			if rich.Category != tc.category {
				t.Fatalf("expected category %q, got %q", tc.category, rich.Category)
			}
			if rich.TextCode != tc.textCode {
				t.Fatalf("expected text code %q, got %q", tc.textCode, rich.TextCode)
			}
			if rich.Code != tc.code {
				t.Fatalf("expected code %d, got %d", tc.code, rich.Code)
			}
			if !tc.check(tc.err) {
				t.Fatalf("expected predicate to match")
			}
		})
	}
}

func TestCollaboratorError_CarriesMetadata(t *testing.T) {
	err := newCollaboratorError(stderrors.New("locked"), "follow", "add", "acct1")
	if err.Metadata["step"] != "add" || err.Metadata["account"] != "acct1" {
		t.Fatalf("unexpected metadata %#v", err.Metadata)
	}
	if IsPersistenceError(err) || IsValidationError(nil) {
		t.Fatalf("expected predicates to be exclusive")
	}
}
