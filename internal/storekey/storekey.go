// Package storekey builds and parses the compound keys under which account
// records live in the key-value store.
//
// Account-scoped records are keyed "<accountID>:<service>:<kind>", service-scoped
// records "<service>:<kind>". The flat colon-delimited namespace is part of the
// wire format: any backend written by one deployment must be readable by
// another, so this package is the only place keys are stitched or split.
//
// Construction validates its inputs and returns an error for identifiers that
// cannot round-trip (empty, or containing the delimiter); that is a caller
// bug. Parsing is the opposite: during enumeration most keys in a shared store
// belong to someone else, so ParseTokenKey reports a plain non-match instead
// of an error.
package storekey

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates key segments. Identifiers must not contain it.
const Delimiter = ":"

// Kind names the record type encoded in a key's final segment.
type Kind string

// Account-scoped record kinds.
const (
	KindToken              Kind = "token"
	KindMetadata           Kind = "metadata"
	KindClientRegistration Kind = "client-registration"
)

// Service-scoped record kinds.
const (
	KindActive Kind = "active"
	KindLinked Kind = "linked"
)

// ErrInvalidKeyParameter reports an identifier that cannot be encoded into a
// key, either because it is empty or because it contains the delimiter.
var ErrInvalidKeyParameter = errors.New("invalid key parameter")

// ForAccount returns the storage key for an account-scoped record.
func ForAccount(kind Kind, accountID, service string) (string, error) {
	if err := checkSegment("account id", accountID); err != nil {
		return "", err
	}
	if err := checkSegment("service", service); err != nil {
		return "", err
	}
	return accountID + Delimiter + service + Delimiter + string(kind), nil
}

// ForService returns the storage key for a service-scoped record.
func ForService(kind Kind, service string) (string, error) {
	if err := checkSegment("service", service); err != nil {
		return "", err
	}
	return service + Delimiter + string(kind), nil
}

// TokenKey is the parsed form of a token record key.
type TokenKey struct {
	AccountID string
	Service   string
}

// ParseTokenKey splits key into its token-record components. The second
// return value is false for any key that is not exactly three non-empty
// colon-delimited segments ending in the literal "token".
func ParseTokenKey(key string) (TokenKey, bool) {
	parts := strings.Split(key, Delimiter)
	if len(parts) != 3 {
		return TokenKey{}, false
	}
	if parts[0] == "" || parts[1] == "" || parts[2] != string(KindToken) {
		return TokenKey{}, false
	}
	return TokenKey{AccountID: parts[0], Service: parts[1]}, true
}

func checkSegment(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidKeyParameter, name)
	}
	if strings.Contains(value, Delimiter) {
		return fmt.Errorf("%w: %s %q contains %q", ErrInvalidKeyParameter, name, value, Delimiter)
	}
	return nil
}
