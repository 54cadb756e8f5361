package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps each entry in the OS-native credential storage (macOS
// Keychain, Windows Credential Manager, Linux Secret Service), one keyring
// item per key under a shared keyring service namespace.
//
// The keyring APIs offer no enumeration, so KeyringStore deliberately does not
// implement Enumerable.
type KeyringStore struct {
	namespace string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore whose entries live under the given
// keyring service namespace.
func NewKeyringStore(namespace string) (*KeyringStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("keyring namespace cannot be empty")
	}

	return &KeyringStore{
		namespace: namespace,
	}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (k *KeyringStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := keyring.Get(k.namespace, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key, overwriting any existing keyring item.
func (k *KeyringStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return keyring.Set(k.namespace, key, value)
}

// Delete removes the keyring item for key, if any.
func (k *KeyringStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := keyring.Delete(k.namespace, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
