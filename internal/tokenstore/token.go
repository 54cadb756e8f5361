package tokenstore

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the credential payload stored per (account, service) pair. The
// directory never reads anything here except ExpiresAt, and only for display.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is an absolute expiry in epoch milliseconds. Zero means the
	// credential does not expire.
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// Expiry returns the expiry instant and whether the token expires at all.
func (t Token) Expiry() (time.Time, bool) {
	if t.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(t.ExpiresAt), true
}

// Expired reports whether the token's expiry has passed. Non-expiring tokens
// are never expired.
func (t Token) Expired(now time.Time) bool {
	expiry, ok := t.Expiry()
	if !ok {
		return false
	}
	return !expiry.After(now)
}

// OAuth2 converts the payload to the oauth2 package's token type.
func (t Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if expiry, ok := t.Expiry(); ok {
		tok.Expiry = expiry
	}
	return tok
}

// FromOAuth2 converts an oauth2 token into the stored payload shape.
func FromOAuth2(tok *oauth2.Token) Token {
	t := Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresAt = tok.Expiry.UnixMilli()
	}
	return t
}
