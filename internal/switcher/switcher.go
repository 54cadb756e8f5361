// Package switcher decides whether an account transition can be satisfied
// from the existing directory or must fall through to interactive
// re-authentication.
//
// The efficiency property the package exists for: a reference that resolves
// to an already-linked account (by ID or alias) is served entirely from the
// directory, without ever invoking the re-authentication capability.
package switcher

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/florianilch/switchboard/internal/directory"
)

// Authenticator is the re-authentication capability provided by the
// authorization layer. Both operations may fail; failures propagate to the
// switcher's caller unchanged.
type Authenticator interface {
	// IdentifyCurrentAccount returns the email the external service currently
	// considers signed in, without an interactive flow. Used only when the
	// directory has no state for a service yet.
	IdentifyCurrentAccount(ctx context.Context) (string, error)

	// AuthenticateNewAccount runs the interactive authorization flow and
	// returns the email it resolved to, which may be any account, including
	// one already linked, regardless of what the caller asked for.
	AuthenticateNewAccount(ctx context.Context) (string, error)
}

// Result reports the outcome of a switch or removal.
type Result struct {
	Email string `json:"email"`
	IsNew bool   `json:"isNew"`

	// LinkedAccounts counts the service's linked accounts after the operation.
	LinkedAccounts int `json:"linkedAccounts"`
}

// Option configures a Switcher.
type Option func(*Switcher)

// WithClock overrides the time source used for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Switcher) {
		s.now = now
	}
}

// Switcher runs the smart-switch decision algorithm over a directory and a
// re-authentication capability.
type Switcher struct {
	dir  *directory.Directory
	auth Authenticator
	now  func() time.Time
}

// New creates a Switcher.
func New(dir *directory.Directory, auth Authenticator, opts ...Option) *Switcher {
	s := &Switcher{
		dir:  dir,
		auth: auth,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Switch makes the account referenced by emailOrAlias the active account for
// service, re-authenticating only when the reference does not resolve against
// the linked accounts. An empty emailOrAlias always re-authenticates. If
// alias is non-empty it is assigned to the resulting account, replacing any
// previous alias; existing aliases are otherwise left alone.
//
// Single attempt, no retries: directory and authenticator errors propagate
// unchanged.
func (s *Switcher) Switch(ctx context.Context, service, emailOrAlias, alias string) (*Result, error) {
	linked, err := s.dir.LinkedAccounts(ctx, service)
	if err != nil {
		return nil, err
	}

	if emailOrAlias != "" {
		resolved, err := s.dir.ResolveAccount(ctx, service, emailOrAlias)
		if err != nil {
			return nil, err
		}
		if resolved != "" {
			// Reuse path: served from the directory, no re-authentication.
			if err := s.dir.SetActiveAccount(ctx, service, resolved); err != nil {
				return nil, err
			}
			if alias != "" {
				if err := s.upsertInfo(ctx, resolved, service, alias); err != nil {
					return nil, err
				}
			}
			return &Result{Email: resolved, IsNew: false, LinkedAccounts: len(linked)}, nil
		}
		// Unresolved references fall through to re-authentication; an alias
		// only resolves against accounts that are already linked.
	}

	email, err := s.auth.AuthenticateNewAccount(ctx)
	if err != nil {
		return nil, err
	}

	// The returned email is authoritative and need not match the request; it
	// may even be an account that is already linked.
	isNew := !slices.Contains(linked, email)
	if isNew {
		if err := s.dir.AddAccount(ctx, service, email); err != nil {
			return nil, err
		}
	}
	if err := s.upsertInfo(ctx, email, service, alias); err != nil {
		return nil, err
	}
	if err := s.dir.SetActiveAccount(ctx, service, email); err != nil {
		return nil, err
	}

	count := len(linked)
	if isNew {
		count++
	}
	return &Result{Email: email, IsNew: isNew, LinkedAccounts: count}, nil
}

// Remove resolves ref (exact account ID, then alias scan) and removes the
// account. Unlike Switch, an unresolvable reference is an error, not a fall
// through.
func (s *Switcher) Remove(ctx context.Context, service, ref string) (*Result, error) {
	resolved, err := s.dir.ResolveAccount(ctx, service, ref)
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		return nil, fmt.Errorf("%w: %q for service %s", directory.ErrAccountNotFound, ref, service)
	}

	if err := s.dir.RemoveAccount(ctx, service, resolved); err != nil {
		return nil, err
	}

	remaining, err := s.dir.LinkedAccounts(ctx, service)
	if err != nil {
		return nil, err
	}
	return &Result{Email: resolved, LinkedAccounts: len(remaining)}, nil
}

// Current returns the active account for service. When the directory holds no
// state for the service at all, it falls back to asking the capability which
// account the external service currently identifies.
func (s *Switcher) Current(ctx context.Context, service string) (string, error) {
	active, err := s.dir.ActiveAccount(ctx, service)
	if err != nil || active != "" {
		return active, err
	}

	linked, err := s.dir.LinkedAccounts(ctx, service)
	if err != nil {
		return "", err
	}
	if len(linked) > 0 {
		// Accounts exist but the service was explicitly deactivated; that is
		// an answer, not a reason to probe the external service.
		return "", nil
	}
	return s.auth.IdentifyCurrentAccount(ctx)
}

// upsertInfo replaces the account's metadata, preserving the original
// creation timestamp when the record already exists. An empty alias leaves
// any existing alias untouched.
func (s *Switcher) upsertInfo(ctx context.Context, accountID, service, alias string) error {
	info, err := s.dir.AccountInfo(ctx, accountID, service)
	if err != nil {
		return err
	}
	if info == nil {
		info = &directory.AccountInfo{Email: accountID, AddedAt: s.now()}
	}
	if alias != "" {
		info.Alias = alias
	}
	return s.dir.SetAccountInfo(ctx, accountID, service, *info)
}
