// Package kvstore provides the flat key-value storage backends the account
// directory is built on.
//
// Four backends with different deployment tradeoffs:
//   - Memory: process-local map, for tests and ephemeral runs
//   - File: single JSON document with atomic writes and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service); cannot enumerate keys
//   - SQLite: embedded database, the option for multiple processes sharing
//     one store
//
// The store offers per-key atomicity and nothing more: no transactions and no
// ordering between concurrent writers. Callers that need either must layer it
// on top.
package kvstore
