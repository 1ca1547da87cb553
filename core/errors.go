package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	PromiseErrorInvalid            = "PROMISE_INVALID"
	PromiseErrorInvalidToken       = "PROMISE_INVALID_TOKEN"
	PromiseErrorCollaboratorFailed = "PROMISE_COLLABORATOR_FAILED"
	PromiseErrorPersistenceFailed  = "PROMISE_PERSISTENCE_FAILED"
	PromiseErrorStoreNotReady      = "PROMISE_STORE_NOT_READY"
	PromiseErrorInternal           = "PROMISE_INTERNAL_ERROR"
)

var ErrInvalidToken = errors.New("core: invalid or already used token")

func newValidationError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation("promise: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(PromiseErrorInvalid).
		WithSeverity(goerrors.SeverityError)
}

func newInvalidTokenError(operation string) *goerrors.Error {
	return goerrors.Wrap(ErrInvalidToken, goerrors.CategoryNotFound, "promise: invalid token").
		WithCode(http.StatusNotFound).
		WithTextCode(PromiseErrorInvalidToken).
		WithMetadata(map[string]any{"operation": operation})
}

func newCollaboratorError(err error, operation string, step string, account string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "promise: "+operation+" "+step+" failed for "+account).
		WithCode(http.StatusBadGateway).
		WithTextCode(PromiseErrorCollaboratorFailed).
		WithMetadata(map[string]any{
			"operation": operation,
			"step":      step,
			"account":   account,
		})
}

func newPersistenceError(err error, operation string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "promise: persisting token store failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(PromiseErrorPersistenceFailed).
		WithMetadata(map[string]any{"operation": operation})
}

func newNotReadyError(err error, operation string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "promise: token store is not loaded").
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(PromiseErrorStoreNotReady).
		WithMetadata(map[string]any{"operation": operation})
}

func IsValidationError(err error) bool {
	return hasTextCode(err, PromiseErrorInvalid)
}

func IsInvalidTokenError(err error) bool {
	return hasTextCode(err, PromiseErrorInvalidToken)
}

func IsCollaboratorError(err error) bool {
	return hasTextCode(err, PromiseErrorCollaboratorFailed)
}

func IsPersistenceError(err error) bool {
	return hasTextCode(err, PromiseErrorPersistenceFailed)
}

func IsNotReadyError(err error) bool {
	return hasTextCode(err, PromiseErrorStoreNotReady)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

func promiseErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensurePromiseErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrInvalidToken):
		return newInvalidTokenError("")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newNotReadyError(err, "")
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return ensurePromiseErrorEnvelope(
			goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(PromiseErrorInvalid),
		)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensurePromiseErrorEnvelope(mapped)
}

func ensurePromiseErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = promiseHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultPromiseTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultPromiseTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return PromiseErrorInvalid
	case goerrors.CategoryNotFound:
		return PromiseErrorInvalidToken
	case goerrors.CategoryExternal:
		return PromiseErrorCollaboratorFailed
	case goerrors.CategoryOperation:
		return PromiseErrorStoreNotReady
	default:
		return PromiseErrorInternal
	}
}

func promiseHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
