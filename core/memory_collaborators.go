package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryMembershipSet keeps relations in process memory.
type MemoryMembershipSet struct {
	mu       sync.Mutex
	loaded   map[string]bool
	relation map[string]map[string]bool
}

func NewMemoryMembershipSet() *MemoryMembershipSet {
	return &MemoryMembershipSet{
		loaded:   map[string]bool{},
		relation: map[string]map[string]bool{},
	}
}

func (m *MemoryMembershipSet) Load(_ context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return fmt.Errorf("core: membership account is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded[account] = true
	return nil
}

func (m *MemoryMembershipSet) Has(_ context.Context, account string, relation string, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded[account] {
		return false, fmt.Errorf("core: membership set for %s is not loaded", account)
	}
	return m.relation[membershipKey(account, relation)][member], nil
}

func (m *MemoryMembershipSet) Add(_ context.Context, account string, relation string, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded[account] {
		return fmt.Errorf("core: membership set for %s is not loaded", account)
	}
	key := membershipKey(account, relation)
	if m.relation[key] == nil {
		m.relation[key] = map[string]bool{}
	}
	m.relation[key][member] = true
	return nil
}

func (m *MemoryMembershipSet) Members(account string, relation string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.relation[membershipKey(account, relation)]))
	for member := range m.relation[membershipKey(account, relation)] {
		out = append(out, member)
	}
	return out
}

func membershipKey(account string, relation string) string {
	return account + "\x00" + relation
}

// MemoryAccountKeyring keeps account keys in process memory.
type MemoryAccountKeyring struct {
	mu      sync.Mutex
	next    int
	records []AccountKeyRecord
}

func NewMemoryAccountKeyring() *MemoryAccountKeyring {
	return &MemoryAccountKeyring{}
}

func (k *MemoryAccountKeyring) Has(_ context.Context, query AccountKeyQuery) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, record := range k.records {
		if record.Account == query.Account && record.Keypair == query.Keypair {
			return true, nil
		}
	}
	return false, nil
}

func (k *MemoryAccountKeyring) Add(_ context.Context, addition AccountKeyAddition) (AccountKeyRecord, error) {
	if strings.TrimSpace(addition.Account) == "" {
		return AccountKeyRecord{}, fmt.Errorf("core: keyring account is required")
	}
	if strings.TrimSpace(addition.Consent) == "" {
		return AccountKeyRecord{}, fmt.Errorf("core: keyring consent is required")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, record := range k.records {
		if record.Account == addition.Account && record.Keypair == addition.Keypair {
			return AccountKeyRecord{}, fmt.Errorf("core: key already attached to %s", addition.Account)
		}
	}
	k.next++
	record := AccountKeyRecord{
		ID:        fmt.Sprintf("key_%d", k.next),
		Account:   addition.Account,
		Keypair:   addition.Keypair,
		Purpose:   addition.Purpose,
		Consent:   addition.Consent,
		CreatedAt: time.Now().UTC(),
	}
	k.records = append(k.records, record)
	return record, nil
}

func (k *MemoryAccountKeyring) Keys(account string) []AccountKeyRecord {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := []AccountKeyRecord{}
	for _, record := range k.records {
		if record.Account == account {
			out = append(out, record)
		}
	}
	return out
}

var (
	_ MembershipSet  = (*MemoryMembershipSet)(nil)
	_ AccountKeyring = (*MemoryAccountKeyring)(nil)
)
