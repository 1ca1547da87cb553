package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type recordingLogger struct {
	stubLogger
	message string
	args    []any
}

func (r *recordingLogger) Info(message string, args ...any) {
	r.message = message
	r.args = args
}

func (r *recordingLogger) Error(message string, args ...any) {
	r.message = message
	r.args = args
}

func (r *recordingLogger) WithContext(context.Context) Logger {
	return r
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type sequenceIssuer struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

func (i *sequenceIssuer) Issue() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.next >= len(i.tokens) {
		return "", fmt.Errorf("sequence issuer exhausted")
	}
	token := i.tokens[i.next]
	i.next++
	return token, nil
}

type stubMembershipSet struct {
	loadFn func(ctx context.Context, account string) error
	hasFn  func(ctx context.Context, account string, relation string, member string) (bool, error)
	addFn  func(ctx context.Context, account string, relation string, member string) error
}

func (s *stubMembershipSet) Load(ctx context.Context, account string) error {
	if s.loadFn == nil {
		return nil
	}
	return s.loadFn(ctx, account)
}

func (s *stubMembershipSet) Has(ctx context.Context, account string, relation string, member string) (bool, error) {
	if s.hasFn == nil {
		return false, nil
	}
	return s.hasFn(ctx, account, relation, member)
}

func (s *stubMembershipSet) Add(ctx context.Context, account string, relation string, member string) error {
	if s.addFn == nil {
		return nil
	}
	return s.addFn(ctx, account, relation, member)
}

type stubAccountKeyring struct {
	hasFn func(ctx context.Context, query AccountKeyQuery) (bool, error)
	addFn func(ctx context.Context, addition AccountKeyAddition) (AccountKeyRecord, error)
}

func (s *stubAccountKeyring) Has(ctx context.Context, query AccountKeyQuery) (bool, error) {
	if s.hasFn == nil {
		return false, nil
	}
	return s.hasFn(ctx, query)
}

func (s *stubAccountKeyring) Add(ctx context.Context, addition AccountKeyAddition) (AccountKeyRecord, error) {
	if s.addFn == nil {
		return AccountKeyRecord{Account: addition.Account, Keypair: addition.Keypair}, nil
	}
	return s.addFn(ctx, addition)
}

// flakyStore fails Save while failSave is set.
type flakyStore struct {
	*FileTokenStore
	mu       sync.Mutex
	failSave bool
	saves    int
}

func (s *flakyStore) setFailSave(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = fail
}

func (s *flakyStore) Save(ctx context.Context) error {
	s.mu.Lock()
	fail := s.failSave
	s.saves++
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("disk full")
	}
	return s.FileTokenStore.Save(ctx)
}

func testPublicKey(seed byte) string {
	return base58.Encode(bytes.Repeat([]byte{seed}, 32))
}

func testAddition(seed byte) AccountAddition {
	return AccountAddition{
		Key: AccountKey{
			Purpose:   KeyPurposeSig,
			Algorithm: KeyAlgorithmEd25519,
			Bytes:     testPublicKey(seed),
		},
		Consent: "consent-proof",
	}
}

func newLoadedService(t *testing.T, opts ...Option) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	base := []Option{
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
		WithMembershipSet(NewMemoryMembershipSet()),
		WithAccountKeyring(NewMemoryAccountKeyring()),
	}
	svc, err := NewService(Config{Path: dir}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load service: %v", err)
	}
	return svc, filepath.Join(dir, DefaultStoreFilename)
}

func readStoreFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	return string(data)
}
