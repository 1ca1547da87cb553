package core

import (
	"context"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFieldMap(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFieldMap(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFieldMap(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

func cloneFieldMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

func newObservedService(t *testing.T, opts ...Option) (*Service, *captureMetricsRecorder, *captureLogger) {
	t.Helper()
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	base := []Option{
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
		WithMembershipSet(NewMemoryMembershipSet()),
		WithAccountKeyring(NewMemoryAccountKeyring()),
	}
	svc, err := NewService(Config{Path: t.TempDir()}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, metrics, logger
}

func TestServiceObservability_CreateAndFollowSuccess(t *testing.T) {
	svc, metrics, logger := newObservedService(t)
	ctx := context.Background()

	token, err := svc.CreatePromise(ctx, FollowPromise{Account: "acct1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Follow(ctx, token, "friend1"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	if !hasCounter(metrics.counters, "promise.create.total", "success") {
		t.Fatalf("expected promise.create.total success counter")
	}
	if !hasHistogram(metrics.histograms, "promise.follow.duration_ms", "success") {
		t.Fatalf("expected promise.follow.duration_ms histogram")
	}
	if !hasLog(logger.snapshot(), "info", "follow succeeded", "follow") {
		t.Fatalf("expected follow succeeded structured log")
	}
	if !hasLog(logger.snapshot(), "info", "load succeeded", "load") {
		t.Fatalf("expected load succeeded structured log")
	}
}

func TestServiceObservability_NeverLogsFullToken(t *testing.T) {
	svc, _, logger := newObservedService(t)
	ctx := context.Background()

	token, err := svc.CreatePromise(ctx, AccountAddPromise{Account: "acct1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	for _, record := range logger.snapshot() {
		for key, value := range record.fields {
			if text, ok := value.(string); ok && text == token {
				t.Fatalf("expected token to be redacted in field %q of %q", key, record.msg)
			}
		}
		if hint, ok := record.fields["token_hint"].(string); ok && len(hint) > 8 {
			t.Fatalf("expected short token hint, got %q", hint)
		}
	}
}

func TestServiceObservability_FailureCarriesErrorCode(t *testing.T) {
	svc, metrics, logger := newObservedService(t)

	_, err := svc.Follow(context.Background(), "missing", "friend1")
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found envelope, got %v", err)
	}
	if !hasCounter(metrics.counters, "promise.follow.total", "failure") {
		t.Fatalf("expected follow failure counter")
	}
	if !hasLog(logger.snapshot(), "error", "follow failed", "follow") {
		t.Fatalf("expected follow failure log")
	}
	records := logger.snapshot()
	last := records[len(records)-1]
	if last.fields["error_code"] != PromiseErrorInvalidToken {
		t.Fatalf("expected error_code %q, got %#v", PromiseErrorInvalidToken, last.fields["error_code"])
	}
}

func TestServiceObservability_LoadFailureCounter(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	store := &flakyStore{FileTokenStore: NewFileTokenStore("")}
	svc, err := NewService(DefaultConfig(),
		WithMetricsRecorder(metrics),
		WithLogger(stubLogger{}),
		WithTokenStore(store),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Load(context.Background()); err == nil {
		t.Fatalf("expected load failure for an unconfigured path")
	}
	found := false
	for _, counter := range metrics.counters {
		if counter.name == "promise.load.failed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected promise.load.failed counter")
	}
}

func TestOperationOutcome_TagsStayLowCardinality(t *testing.T) {
	outcome := newOperationOutcome("Account-Add", time.Now(), newInvalidTokenError("account_add"))
	if outcome.operation != "account_add" {
		t.Fatalf("expected normalized operation, got %q", outcome.operation)
	}
	tags := outcome.tags(map[string]any{
		"purpose":    "sig",
		"account":    "acct1",
		"token_hint": "abcdefgh",
	})
	if tags["status"] != "failure" || tags["purpose"] != "sig" || tags["error_code"] != PromiseErrorInvalidToken {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if _, ok := tags["account"]; ok {
		t.Fatalf("expected account to stay out of metric tags")
	}
	if _, ok := tags["token_hint"]; ok {
		t.Fatalf("expected token hint to stay out of metric tags")
	}

	fields := outcome.logFields(map[string]any{"account": "acct1"})
	if fields["account"] != "acct1" || fields["operation"] != "account_add" || fields["error_code"] != PromiseErrorInvalidToken {
		t.Fatalf("unexpected log fields %#v", fields)
	}
	if operationKey("  ") != "unknown" {
		t.Fatalf("expected blank operation to map to unknown")
	}
}

func hasCounter(items []capturedCounter, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasHistogram(items []capturedHistogram, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasLog(items []capturedLog, level string, message string, operation string) bool {
	for _, item := range items {
		if item.level != level {
			continue
		}
		if item.msg != message {
			continue
		}
		if item.fields["operation"] == operation {
			return true
		}
	}
	return false
}
