package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Create validates candidate, issues a fresh token for it and persists the
// pair. The token is returned only once the store has been saved.
func (s *Service) Create(ctx context.Context, candidate map[string]any) (string, error) {
	promise, err := ParsePromise(candidate)
	if err != nil {
		s.observeOperation(ctx, time.Now().UTC(), "create", err, map[string]any{})
		return "", err
	}
	return s.CreatePromise(ctx, promise)
}

func (s *Service) CreatePromise(ctx context.Context, promise Promise) (token string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if token != "" {
			fields["token_hint"] = tokenHint(token)
		}
		s.observeOperation(ctx, startedAt, "create", err, fields)
	}()

	if err = ValidatePromise(promise); err != nil {
		return "", err
	}
	promise = normalizePromise(promise)
	fields["kind"] = string(promise.Kind())
	fields["account"] = promise.BoundAccount()

	if err = s.awaitLoaded(ctx, "create"); err != nil {
		return "", err
	}
	if s.issuer == nil {
		err = s.mapError(fmt.Errorf("core: token issuer is not configured"))
		return "", err
	}
	issued, issueErr := s.issuer.Issue()
	if issueErr != nil {
		err = s.mapError(issueErr)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Insert(issued, promise)
	if saveErr := s.store.Save(ctx); saveErr != nil {
		// Nobody holds the token yet, so the insert is undone.
		s.store.Delete(issued)
		err = newPersistenceError(saveErr, "create")
		return "", err
	}
	return issued, nil
}

// Follow redeems a follow promise for member. It reports true when member
// was added to the bound account's follow set and false when member was
// already present. In both cases the token is consumed. A collaborator
// failure keeps the token so the redemption can be retried.
//
// When the member was added but the token file could not be saved, Follow
// returns true together with a persistence error: the member is in the set
// and the token is spent in memory, so callers must not retry the add.
func (s *Service) Follow(ctx context.Context, token string, member string) (added bool, err error) {
	startedAt := time.Now().UTC()
	token = trimToken(token)
	fields := map[string]any{"token_hint": tokenHint(token)}
	defer func() {
		fields["added"] = added
		s.observeOperation(ctx, startedAt, "follow", err, fields)
	}()

	member = strings.TrimSpace(member)
	if member == "" {
		err = newValidationError("member", "member id is required")
		return false, err
	}
	if err = s.awaitLoaded(ctx, "follow"); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	promise, ok := s.lookup(token, PromiseKindFollow)
	if !ok {
		err = newInvalidTokenError("follow")
		return false, err
	}
	account := promise.BoundAccount()
	fields["account"] = account

	if s.membershipSet == nil {
		err = s.mapError(fmt.Errorf("core: membership set is not configured"))
		return false, err
	}
	relation := s.config.FollowRelation
	if loadErr := s.membershipSet.Load(ctx, account); loadErr != nil {
		err = newCollaboratorError(loadErr, "follow", "load", account)
		return false, err
	}
	exists, hasErr := s.membershipSet.Has(ctx, account, relation, member)
	if hasErr != nil {
		err = newCollaboratorError(hasErr, "follow", "has", account)
		return false, err
	}
	if exists {
		err = s.consume(ctx, token, "follow")
		return false, err
	}
	if addErr := s.membershipSet.Add(ctx, account, relation, member); addErr != nil {
		err = newCollaboratorError(addErr, "follow", "add", account)
		return false, err
	}
	added = true
	err = s.consume(ctx, token, "follow")
	return added, err
}

// AccountAdd redeems an account-add promise by attaching addition's key to
// the bound account. It reports false when the account already holds the
// key. The addition is validated before the token is looked up.
//
// As with Follow, a true result paired with a persistence error means the
// key was attached and only the token file write failed.
func (s *Service) AccountAdd(ctx context.Context, token string, addition AccountAddition) (added bool, err error) {
	startedAt := time.Now().UTC()
	token = trimToken(token)
	fields := map[string]any{"token_hint": tokenHint(token)}
	defer func() {
		fields["added"] = added
		s.observeOperation(ctx, startedAt, "account_add", err, fields)
	}()

	if err = addition.Validate(); err != nil {
		return false, err
	}
	fields["purpose"] = string(addition.Key.Purpose)
	if err = s.awaitLoaded(ctx, "account_add"); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	promise, ok := s.lookup(token, PromiseKindAccountAdd)
	if !ok {
		err = newInvalidTokenError("account_add")
		return false, err
	}
	account := promise.BoundAccount()
	fields["account"] = account

	if s.accountKeyring == nil {
		err = s.mapError(fmt.Errorf("core: account keyring is not configured"))
		return false, err
	}
	keypair := addition.Key.Keypair()
	exists, hasErr := s.accountKeyring.Has(ctx, AccountKeyQuery{Account: account, Keypair: keypair})
	if hasErr != nil {
		err = newCollaboratorError(hasErr, "account_add", "has", account)
		return false, err
	}
	if exists {
		err = s.consume(ctx, token, "account_add")
		return false, err
	}
	if _, addErr := s.accountKeyring.Add(ctx, AccountKeyAddition{
		Account: account,
		Keypair: keypair,
		Purpose: addition.Key.Purpose,
		Consent: strings.TrimSpace(addition.Consent),
	}); addErr != nil {
		err = newCollaboratorError(addErr, "account_add", "add", account)
		return false, err
	}
	added = true
	err = s.consume(ctx, token, "account_add")
	return added, err
}

// Revoke discards a token without performing its action. Unknown tokens are
// not an error.
func (s *Service) Revoke(ctx context.Context, token string) (err error) {
	startedAt := time.Now().UTC()
	token = trimToken(token)
	fields := map[string]any{"token_hint": tokenHint(token)}
	defer func() {
		s.observeOperation(ctx, startedAt, "revoke", err, fields)
	}()

	if err = s.awaitLoaded(ctx, "revoke"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields["existed"] = s.store.Delete(token)
	if saveErr := s.store.Save(ctx); saveErr != nil {
		err = newPersistenceError(saveErr, "revoke")
		return err
	}
	return nil
}

// List returns the live promises in insertion order.
func (s *Service) List(ctx context.Context) ([]TokenEntry, error) {
	if err := s.awaitLoaded(ctx, "list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Entries(), nil
}

func (s *Service) Get(ctx context.Context, token string) (Promise, error) {
	if err := s.awaitLoaded(ctx, "get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	promise, ok := s.store.Get(trimToken(token))
	if !ok {
		return nil, newInvalidTokenError("get")
	}
	return promise, nil
}

func (s *Service) lookup(token string, kind PromiseKind) (Promise, bool) {
	if token == "" {
		return nil, false
	}
	promise, ok := s.store.Get(token)
	if !ok || promise == nil || promise.Kind() != kind {
		return nil, false
	}
	return promise, true
}

// consume removes a redeemed token. The deletion stands even when the save
// fails so the token cannot be redeemed twice in this process.
func (s *Service) consume(ctx context.Context, token string, operation string) error {
	s.store.Delete(token)
	if err := s.store.Save(ctx); err != nil {
		return newPersistenceError(err, operation)
	}
	return nil
}
