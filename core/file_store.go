package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/sasha-s/go-deadlock"
)

const defaultStoreFileMode fs.FileMode = 0o600

type TokenEntry struct {
	Token   string
	Promise Promise
}

// TokenStore holds live promises keyed by token. Mutations only touch memory;
// Save makes the current mapping durable.
type TokenStore interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	Get(token string) (Promise, bool)
	Insert(token string, promise Promise)
	Delete(token string) bool
	Entries() []TokenEntry
	Len() int
}

// FileTokenStore keeps the token mapping in a single JSON file holding an
// array of [token, promise] pairs in insertion order.
type FileTokenStore struct {
	mu      deadlock.Mutex
	path    string
	mode    fs.FileMode
	order   []string
	entries map[string]Promise
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path:    strings.TrimSpace(path),
		mode:    defaultStoreFileMode,
		entries: map[string]Promise{},
	}
}

func (s *FileTokenStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load replaces the in-memory mapping with the file contents. A missing file
// is created holding an empty array.
func (s *FileTokenStore) Load(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("core: token store is not configured")
	}
	if s.path == "" {
		return fmt.Errorf("core: token store path is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.order = nil
		s.entries = map[string]Promise{}
		s.mu.Unlock()
		return s.Save(ctx)
	}
	if err != nil {
		return fmt.Errorf("core: read token store %s: %w", s.path, err)
	}

	order, entries, err := decodeTokenFile(data)
	if err != nil {
		return fmt.Errorf("core: decode token store %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.order = order
	s.entries = entries
	s.mu.Unlock()
	return nil
}

func (s *FileTokenStore) Save(context.Context) error {
	if s == nil {
		return fmt.Errorf("core: token store is not configured")
	}
	if s.path == "" {
		return fmt.Errorf("core: token store path is required")
	}

	s.mu.Lock()
	data, err := encodeTokenFile(s.order, s.entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("core: create token store directory: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, s.mode); err != nil {
		return fmt.Errorf("core: write token store %s: %w", s.path, err)
	}
	return nil
}

func (s *FileTokenStore) Get(token string) (Promise, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	promise, ok := s.entries[token]
	return promise, ok
}

func (s *FileTokenStore) Insert(token string, promise Promise) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[token]; !exists {
		s.order = append(s.order, token)
	}
	s.entries[token] = promise
}

func (s *FileTokenStore) Delete(token string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[token]; !exists {
		return false
	}
	delete(s.entries, token)
	for index, existing := range s.order {
		if existing == token {
			s.order = append(s.order[:index], s.order[index+1:]...)
			break
		}
	}
	return true
}

func (s *FileTokenStore) Entries() []TokenEntry {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TokenEntry, 0, len(s.order))
	for _, token := range s.order {
		out = append(out, TokenEntry{Token: token, Promise: s.entries[token]})
	}
	return out
}

func (s *FileTokenStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func encodeTokenFile(order []string, entries map[string]Promise) ([]byte, error) {
	pairs := make([][2]any, 0, len(order))
	for _, token := range order {
		promise, ok := entries[token]
		if !ok {
			continue
		}
		encoded, err := EncodePromise(promise)
		if err != nil {
			return nil, fmt.Errorf("core: encode promise: %w", err)
		}
		pairs = append(pairs, [2]any{token, json.RawMessage(encoded)})
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("core: encode token store: %w", err)
	}
	return data, nil
}

func decodeTokenFile(data []byte) ([]string, map[string]Promise, error) {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, nil, err
	}
	order := make([]string, 0, len(pairs))
	entries := make(map[string]Promise, len(pairs))
	for index, raw := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return nil, nil, fmt.Errorf("entry %d must be a [token, promise] pair", index)
		}
		var token string
		if err := json.Unmarshal(pair[0], &token); err != nil || token == "" {
			return nil, nil, fmt.Errorf("entry %d token must be a non-empty string", index)
		}
		promise, err := DecodePromise(pair[1])
		if err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", index, err)
		}
		if _, exists := entries[token]; !exists {
			order = append(order, token)
		}
		entries[token] = promise
	}
	return order, entries, nil
}

var _ TokenStore = (*FileTokenStore)(nil)
