package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/storekey"
)

// AccountInfo is the metadata record kept per (account, service) pair.
type AccountInfo struct {
	Email      string     `json:"email"`
	Alias      string     `json:"alias,omitempty"`
	AddedAt    time.Time  `json:"addedAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// AccountInfo returns the metadata for the pair, or nil when none exists.
func (d *Directory) AccountInfo(ctx context.Context, accountID, service string) (*AccountInfo, error) {
	key, err := storekey.ForAccount(storekey.KindMetadata, accountID, service)
	if err != nil {
		return nil, err
	}

	raw, err := d.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var info AccountInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s/%s: %w", accountID, service, err)
	}
	return &info, nil
}

// SetAccountInfo replaces the metadata for the pair. There are no merge
// semantics: callers wanting to preserve existing fields (keeping AddedAt
// while changing the alias, say) must read-modify-write.
func (d *Directory) SetAccountInfo(ctx context.Context, accountID, service string, info AccountInfo) error {
	key, err := storekey.ForAccount(storekey.KindMetadata, accountID, service)
	if err != nil {
		return err
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding metadata for %s/%s: %w", accountID, service, err)
	}
	return d.store.Set(ctx, key, string(data))
}

// TouchLastUsed stamps the pair's LastUsedAt, creating a minimal metadata
// record if none exists yet.
func (d *Directory) TouchLastUsed(ctx context.Context, accountID, service string, now time.Time) error {
	info, err := d.AccountInfo(ctx, accountID, service)
	if err != nil {
		return err
	}
	if info == nil {
		info = &AccountInfo{Email: accountID, AddedAt: now}
	}
	info.LastUsedAt = &now
	return d.SetAccountInfo(ctx, accountID, service, *info)
}
