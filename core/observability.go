package core

import (
	"context"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// operationOutcome is what one promise operation reports to logs and metrics.
type operationOutcome struct {
	operation string
	elapsed   time.Duration
	err       error
	code      string
}

func newOperationOutcome(operation string, startedAt time.Time, err error) operationOutcome {
	outcome := operationOutcome{
		operation: operationKey(operation),
		elapsed:   time.Since(startedAt),
		err:       err,
	}
	var richErr *goerrors.Error
	if err != nil && goerrors.As(err, &richErr) {
		outcome.code = richErr.TextCode
	}
	return outcome
}

func (o operationOutcome) status() string {
	if o.err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}

func (o operationOutcome) message() string {
	if o.err != nil {
		return o.operation + " failed"
	}
	return o.operation + " succeeded"
}

// tags keeps metric cardinality low: only the kind and purpose of a promise
// are copied from the log fields, never accounts or token hints.
func (o operationOutcome) tags(fields map[string]any) map[string]string {
	tags := map[string]string{
		"operation": o.operation,
		"status":    o.status(),
	}
	for _, key := range []string{"kind", "purpose"} {
		if value, ok := fields[key].(string); ok && value != "" {
			tags[key] = value
		}
	}
	if o.code != "" {
		tags["error_code"] = o.code
	}
	return tags
}

func (o operationOutcome) logFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+5)
	for key, value := range fields {
		out[key] = value
	}
	out["operation"] = o.operation
	out["status"] = o.status()
	out["duration_ms"] = o.elapsed.Milliseconds()
	if o.err != nil {
		out["error"] = o.err.Error()
	}
	if o.code != "" {
		out["error_code"] = o.code
	}
	return out
}

func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	outcome := newOperationOutcome(operation, startedAt, err)
	tags := outcome.tags(fields)
	s.recordCounter(ctx, "promise."+outcome.operation+".total", 1, tags)
	s.recordHistogram(ctx, "promise."+outcome.operation+".duration_ms", float64(outcome.elapsed.Milliseconds()), tags)

	if err != nil {
		s.logError(ctx, outcome.message(), outcome.logFields(fields))
		return
	}
	s.logInfo(ctx, outcome.message(), outcome.logFields(fields))
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]any) {
	if logger := s.operationLogger(ctx, fields); logger != nil {
		logger.Info(message, sortedFieldArgs(RedactSensitiveMap(fields))...)
	}
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	if logger := s.operationLogger(ctx, fields); logger != nil {
		logger.Error(message, sortedFieldArgs(RedactSensitiveMap(fields))...)
	}
}

// operationLogger binds ctx and, for loggers that support it, the redacted
// fields.
func (s *Service) operationLogger(ctx context.Context, fields map[string]any) Logger {
	if s == nil || s.logger == nil {
		return nil
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(RedactSensitiveMap(fields))
	}
	return logger
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, name, value, cloneTags(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, name, value, cloneTags(tags))
}

// sortedFieldArgs flattens fields into key/value pairs in key order.
func sortedFieldArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// operationKey turns "account-add" or "Account Add" into "account_add".
func operationKey(operation string) string {
	operation = strings.ToLower(strings.TrimSpace(operation))
	if operation == "" {
		return "unknown"
	}
	return strings.NewReplacer(" ", "_", "-", "_").Replace(operation)
}
