package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/storekey"
)

// ExpiryNever is the display value for credentials without an expiry.
const ExpiryNever = "never"

// AccountListing is the per-account view assembled for display.
type AccountListing struct {
	Email      string
	Alias      string
	Active     bool
	AddedAt    time.Time
	LastUsedAt *time.Time
	Expiry     string
}

// credentialExpiry is the only slice of the credential payload the directory
// ever reads: the optional expiry instant, for display.
type credentialExpiry struct {
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Listing assembles the display view of every linked account, in list order.
// Per-account records target disjoint keys, so they are fetched concurrently.
func (d *Directory) Listing(ctx context.Context, service string) ([]AccountListing, error) {
	accounts, err := d.LinkedAccounts(ctx, service)
	if err != nil {
		return nil, err
	}
	active, err := d.ActiveAccount(ctx, service)
	if err != nil {
		return nil, err
	}

	listings := make([]AccountListing, len(accounts))
	g, gCtx := errgroup.WithContext(ctx)
	for i, accountID := range accounts {
		g.Go(func() error {
			listing, err := d.accountListing(gCtx, accountID, service)
			if err != nil {
				return err
			}
			listing.Active = accountID == active
			listings[i] = listing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (d *Directory) accountListing(ctx context.Context, accountID, service string) (AccountListing, error) {
	listing := AccountListing{Email: accountID, Expiry: ExpiryNever}

	info, err := d.AccountInfo(ctx, accountID, service)
	if err != nil {
		return AccountListing{}, err
	}
	if info != nil {
		if info.Email != "" {
			listing.Email = info.Email
		}
		listing.Alias = info.Alias
		listing.AddedAt = info.AddedAt
		listing.LastUsedAt = info.LastUsedAt
	}

	key, err := storekey.ForAccount(storekey.KindToken, accountID, service)
	if err != nil {
		return AccountListing{}, err
	}
	raw, err := d.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return listing, nil
	}
	if err != nil {
		return AccountListing{}, err
	}

	var cred credentialExpiry
	if err := json.Unmarshal([]byte(raw), &cred); err == nil && cred.ExpiresAt > 0 {
		listing.Expiry = time.UnixMilli(cred.ExpiresAt).UTC().Format(time.RFC3339)
	}
	return listing, nil
}
