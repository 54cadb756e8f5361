package directory

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/storekey"
)

func newTestDirectory() *Directory {
	return New(kvstore.NewMemoryStore())
}

func TestAddAccountFirstBecomesActive(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}

	active, err := dir.ActiveAccount(ctx, "gmail")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "a@x.com" {
		t.Fatalf("expected first account active, got %q", active)
	}

	// Adding a second account must not steal the pointer
	if err := dir.AddAccount(ctx, "gmail", "b@x.com"); err != nil {
		t.Fatalf("add second: %v", err)
	}
	active, err = dir.ActiveAccount(ctx, "gmail")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "a@x.com" {
		t.Fatalf("expected active unchanged, got %q", active)
	}
}

func TestAddAccountIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	for range 2 {
		if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := dir.AddAccount(ctx, "gmail", "b@x.com"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	accounts, err := dir.LinkedAccounts(ctx, "gmail")
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	expected := []string{"a@x.com", "b@x.com"}
	if !slices.Equal(accounts, expected) {
		t.Fatalf("expected %v, got %v", expected, accounts)
	}
}

func TestAddAccountRejectsEmptyID(t *testing.T) {
	dir := newTestDirectory()
	if err := dir.AddAccount(context.Background(), "gmail", ""); !errors.Is(err, storekey.ErrInvalidKeyParameter) {
		t.Fatalf("expected ErrInvalidKeyParameter, got %v", err)
	}
}

func TestRemoveAccountReassignsActive(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	for _, id := range []string{"a@x.com", "b@x.com"} {
		if err := dir.AddAccount(ctx, "gmail", id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	if err := dir.RemoveAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	active, err := dir.ActiveAccount(ctx, "gmail")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "b@x.com" {
		t.Fatalf("expected remaining account active, got %q", active)
	}

	accounts, err := dir.LinkedAccounts(ctx, "gmail")
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	if !slices.Equal(accounts, []string{"b@x.com"}) {
		t.Fatalf("expected [b@x.com], got %v", accounts)
	}
}

func TestRemoveLastAccountClearsActive(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := dir.RemoveAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	active, err := dir.ActiveAccount(ctx, "gmail")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "" {
		t.Fatalf("expected no active account, got %q", active)
	}

	// An empty list is a valid terminal state
	accounts, err := dir.LinkedAccounts(ctx, "gmail")
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected empty list, got %v", accounts)
	}
}

func TestRemoveAccountDeletesRecords(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	dir := New(store)

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Set(ctx, "a@x.com:gmail:token", `{"accessToken":"t"}`); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := dir.SetAccountInfo(ctx, "a@x.com", "gmail", AccountInfo{Email: "a@x.com", AddedAt: time.Now()}); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	if err := dir.RemoveAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	for _, key := range []string{"a@x.com:gmail:token", "a@x.com:gmail:metadata"} {
		if _, err := store.Get(ctx, key); !errors.Is(err, kvstore.ErrNotFound) {
			t.Fatalf("expected %s deleted, got %v", key, err)
		}
	}
}

func TestRemoveUnlinkedAccountIsNoOp(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := dir.RemoveAccount(ctx, "gmail", "ghost@x.com"); err != nil {
		t.Fatalf("remove of unlinked account: %v", err)
	}

	accounts, err := dir.LinkedAccounts(ctx, "gmail")
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	if !slices.Equal(accounts, []string{"a@x.com"}) {
		t.Fatalf("expected list untouched, got %v", accounts)
	}
}

// Mirrors the directory lifecycle end to end: first add activates, second add
// leaves the pointer alone, removing the active account promotes the survivor.
func TestDirectoryScenario(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add a: %v", err)
	}
	assertState(t, dir, "gmail", "a@x.com", []string{"a@x.com"})

	if err := dir.AddAccount(ctx, "gmail", "b@x.com"); err != nil {
		t.Fatalf("add b: %v", err)
	}
	assertState(t, dir, "gmail", "a@x.com", []string{"a@x.com", "b@x.com"})

	if err := dir.RemoveAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	assertState(t, dir, "gmail", "b@x.com", []string{"b@x.com"})
}

// The active pointer must reference a linked account (or be absent) after any
// sequence of mutations.
func TestActivePointerInvariant(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	steps := []func() error{
		func() error { return dir.AddAccount(ctx, "gmail", "a@x.com") },
		func() error { return dir.AddAccount(ctx, "gmail", "b@x.com") },
		func() error { return dir.SetActiveAccount(ctx, "gmail", "b@x.com") },
		func() error { return dir.AddAccount(ctx, "gmail", "c@x.com") },
		func() error { return dir.RemoveAccount(ctx, "gmail", "b@x.com") },
		func() error { return dir.RemoveAccount(ctx, "gmail", "a@x.com") },
		func() error { return dir.RemoveAccount(ctx, "gmail", "c@x.com") },
	}

	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		active, err := dir.ActiveAccount(ctx, "gmail")
		if err != nil {
			t.Fatalf("step %d active: %v", i, err)
		}
		accounts, err := dir.LinkedAccounts(ctx, "gmail")
		if err != nil {
			t.Fatalf("step %d linked: %v", i, err)
		}
		if active != "" && !slices.Contains(accounts, active) {
			t.Fatalf("step %d: active %q not in linked list %v", i, active, accounts)
		}
	}
}

func TestClearActiveAccount(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := dir.ClearActiveAccount(ctx, "gmail"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	active, err := dir.ActiveAccount(ctx, "gmail")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "" {
		t.Fatalf("expected deactivated service, got %q", active)
	}
}

func TestServicesAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	if err := dir.AddAccount(ctx, "gmail", "a@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := dir.AddAccount(ctx, "calendar", "b@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}

	accounts, err := dir.LinkedAccounts(ctx, "gmail")
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	if !slices.Equal(accounts, []string{"a@x.com"}) {
		t.Fatalf("gmail list leaked: %v", accounts)
	}

	active, err := dir.ActiveAccount(ctx, "calendar")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != "b@x.com" {
		t.Fatalf("expected calendar active b@x.com, got %q", active)
	}
}

func TestResolveAccount(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	for _, id := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if err := dir.AddAccount(ctx, "gmail", id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	// Duplicate alias on b and c: list order decides the winner
	for _, id := range []string{"b@x.com", "c@x.com"} {
		if err := dir.SetAccountInfo(ctx, id, "gmail", AccountInfo{Email: id, Alias: "work", AddedAt: time.Now()}); err != nil {
			t.Fatalf("set info %s: %v", id, err)
		}
	}

	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{name: "exact id", ref: "a@x.com", expected: "a@x.com"},
		{name: "alias first match wins", ref: "work", expected: "b@x.com"},
		{name: "unknown ref", ref: "nope", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := dir.ResolveAccount(ctx, "gmail", tt.ref)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if resolved != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, resolved)
			}
		})
	}
}

func assertState(t *testing.T, dir *Directory, service, wantActive string, wantLinked []string) {
	t.Helper()
	ctx := context.Background()

	active, err := dir.ActiveAccount(ctx, service)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != wantActive {
		t.Fatalf("expected active %q, got %q", wantActive, active)
	}

	accounts, err := dir.LinkedAccounts(ctx, service)
	if err != nil {
		t.Fatalf("linked: %v", err)
	}
	if !slices.Equal(accounts, wantLinked) {
		t.Fatalf("expected linked %v, got %v", wantLinked, accounts)
	}
}
