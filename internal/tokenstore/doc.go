// Package tokenstore provides typed persistence of credential payloads per
// (account, service) pair on top of a key-value store.
//
// The store is generic over the payload type and never interprets its
// contents; the concrete Token type carries what OAuth-derived credentials
// need (access token, optional refresh token, optional epoch-ms expiry).
// Absence of a credential is a normal outcome and is reported as a nil
// payload, not an error.
package tokenstore
