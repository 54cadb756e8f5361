// Package directory maintains the per-service account directory: which
// accounts are linked, which one is active, and the metadata attached to each.
//
// The directory owns two service-scoped records in the store, the ordered
// linked-accounts list and the active-account pointer, and re-establishes the
// one invariant that matters after every mutation: if the pointer is set, it
// names a member of the linked list.
//
// Operations perform plain read-modify-write sequences with no locking and no
// rollback. Two concurrent writers for the same service can lose an update
// (last writer wins), and a failure partway through a multi-key operation
// leaves whatever was already written. Callers needing stricter guarantees
// must serialize per service themselves or use a store with conditional
// writes.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/storekey"
)

// ErrAccountNotFound reports a reference (account id or alias) that resolves
// to no linked account.
var ErrAccountNotFound = errors.New("account not found")

// Directory is the account directory for all services sharing one store.
type Directory struct {
	store kvstore.Store
}

// New creates a Directory on top of the given store.
func New(store kvstore.Store) *Directory {
	return &Directory{store: store}
}

// LinkedAccounts returns the linked account IDs for service in insertion
// order. A service with no directory state yields an empty slice.
func (d *Directory) LinkedAccounts(ctx context.Context, service string) ([]string, error) {
	key, err := storekey.ForService(storekey.KindLinked, service)
	if err != nil {
		return nil, err
	}

	raw, err := d.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("decoding linked accounts for %s: %w", service, err)
	}
	return accounts, nil
}

// ActiveAccount returns the active account ID for service, or "" when no
// account is active. Absence is a normal outcome, not an error.
func (d *Directory) ActiveAccount(ctx context.Context, service string) (string, error) {
	key, err := storekey.ForService(storekey.KindActive, service)
	if err != nil {
		return "", err
	}

	accountID, err := d.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// SetActiveAccount points service's active-account pointer at accountID.
//
// Precondition: accountID is a member of service's linked list. This is not
// verified here; the switcher resolves references against the list before
// calling, and AddAccount/RemoveAccount only ever pass members.
func (d *Directory) SetActiveAccount(ctx context.Context, service, accountID string) error {
	key, err := storekey.ForService(storekey.KindActive, service)
	if err != nil {
		return err
	}
	return d.store.Set(ctx, key, accountID)
}

// ClearActiveAccount removes service's active-account pointer, leaving the
// service with no active account.
func (d *Directory) ClearActiveAccount(ctx context.Context, service string) error {
	key, err := storekey.ForService(storekey.KindActive, service)
	if err != nil {
		return err
	}
	return d.store.Delete(ctx, key)
}

// AddAccount links accountID to service, appending it to the linked list if
// not already present. The first account linked to a service becomes active
// automatically. Calling twice with the same arguments is a no-op the second
// time.
func (d *Directory) AddAccount(ctx context.Context, service, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("%w: account id is empty", storekey.ErrInvalidKeyParameter)
	}

	accounts, err := d.LinkedAccounts(ctx, service)
	if err != nil {
		return err
	}

	if !slices.Contains(accounts, accountID) {
		accounts = append(accounts, accountID)
		if err := d.writeLinkedAccounts(ctx, service, accounts); err != nil {
			return err
		}
	}

	active, err := d.ActiveAccount(ctx, service)
	if err != nil {
		return err
	}
	if active == "" {
		return d.SetActiveAccount(ctx, service, accountID)
	}
	return nil
}

// RemoveAccount unlinks accountID from service, deleting its credential,
// metadata, and client-registration records (missing records are not an
// error). If the removed account was active, the first remaining linked
// account becomes active; with no accounts left the pointer is cleared.
func (d *Directory) RemoveAccount(ctx context.Context, service, accountID string) error {
	for _, kind := range []storekey.Kind{storekey.KindToken, storekey.KindMetadata, storekey.KindClientRegistration} {
		key, err := storekey.ForAccount(kind, accountID, service)
		if err != nil {
			return err
		}
		if err := d.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	accounts, err := d.LinkedAccounts(ctx, service)
	if err != nil {
		return err
	}

	remaining := slices.DeleteFunc(slices.Clone(accounts), func(id string) bool {
		return id == accountID
	})
	if len(remaining) != len(accounts) {
		if err := d.writeLinkedAccounts(ctx, service, remaining); err != nil {
			return err
		}
	}

	active, err := d.ActiveAccount(ctx, service)
	if err != nil {
		return err
	}
	if active != accountID {
		return nil
	}
	if len(remaining) > 0 {
		return d.SetActiveAccount(ctx, service, remaining[0])
	}
	return d.ClearActiveAccount(ctx, service)
}

// ResolveAccount maps ref to a linked account ID: exact match on the account
// ID first, then a scan of each linked account's alias in list order (first
// match wins on duplicate aliases). Returns "" when nothing matches; the
// switch path treats that as "not linked yet" while removal treats it as an
// error, so the distinction is the caller's.
func (d *Directory) ResolveAccount(ctx context.Context, service, ref string) (string, error) {
	accounts, err := d.LinkedAccounts(ctx, service)
	if err != nil {
		return "", err
	}

	if slices.Contains(accounts, ref) {
		return ref, nil
	}

	for _, accountID := range accounts {
		info, err := d.AccountInfo(ctx, accountID, service)
		if err != nil {
			return "", err
		}
		if info != nil && info.Alias != "" && info.Alias == ref {
			return accountID, nil
		}
	}
	return "", nil
}

func (d *Directory) writeLinkedAccounts(ctx context.Context, service string, accounts []string) error {
	key, err := storekey.ForService(storekey.KindLinked, service)
	if err != nil {
		return err
	}

	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encoding linked accounts for %s: %w", service, err)
	}
	return d.store.Set(ctx, key, string(data))
}
