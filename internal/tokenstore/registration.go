package tokenstore

import (
	"time"

	"github.com/google/uuid"
)

// ClientRegistration records the dynamic OAuth client registration material an
// account obtained from its service, stored alongside the account's token and
// metadata under the client-registration key kind.
type ClientRegistration struct {
	RegistrationID string    `json:"registrationId"`
	ClientID       string    `json:"clientId"`
	IssuedAt       time.Time `json:"issuedAt"`
}

// NewClientRegistration creates a registration record with a fresh ID.
func NewClientRegistration(clientID string, now time.Time) ClientRegistration {
	return ClientRegistration{
		RegistrationID: uuid.NewString(),
		ClientID:       clientID,
		IssuedAt:       now,
	}
}
