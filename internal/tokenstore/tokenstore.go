package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/storekey"
)

// Store persists payloads of type T per (account, service) pair, addressing
// the backing key-value store through the compound-key codec.
type Store[T any] struct {
	kv   kvstore.Store
	kind storekey.Kind
}

// New creates a credential Store over kv, keyed as token records.
func New[T any](kv kvstore.Store) *Store[T] {
	return &Store[T]{kv: kv, kind: storekey.KindToken}
}

// NewRegistrationStore creates a Store for client-registration records.
func NewRegistrationStore(kv kvstore.Store) *Store[ClientRegistration] {
	return &Store[ClientRegistration]{kv: kv, kind: storekey.KindClientRegistration}
}

// Get returns the payload for the pair, or nil when none is stored.
func (s *Store[T]) Get(ctx context.Context, accountID, service string) (*T, error) {
	key, err := storekey.ForAccount(s.kind, accountID, service)
	if err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payload T
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding %s record for %s/%s: %w", s.kind, accountID, service, err)
	}
	return &payload, nil
}

// Set stores the payload for the pair, overwriting any existing record.
func (s *Store[T]) Set(ctx context.Context, accountID, service string, payload T) error {
	key, err := storekey.ForAccount(s.kind, accountID, service)
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s record for %s/%s: %w", s.kind, accountID, service, err)
	}
	return s.kv.Set(ctx, key, string(data))
}

// Delete removes the payload for the pair. A missing record is not an error.
func (s *Store[T]) Delete(ctx context.Context, accountID, service string) error {
	key, err := storekey.ForAccount(s.kind, accountID, service)
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, key)
}

// Accounts returns the IDs of accounts holding a token record for service, by
// scanning every key in the store. Enumeration is a best-effort convenience:
// a backend that cannot list keys, or fails to, yields an empty result rather
// than an error.
func Accounts(ctx context.Context, kv kvstore.Store, service string) []string {
	enum, ok := kv.(kvstore.Enumerable)
	if !ok {
		return nil
	}

	keys, err := enum.Keys(ctx)
	if err != nil {
		return nil
	}

	var ids []string
	for _, key := range keys {
		if parsed, ok := storekey.ParseTokenKey(key); ok && parsed.Service == service {
			ids = append(ids, parsed.AccountID)
		}
	}
	return ids
}
