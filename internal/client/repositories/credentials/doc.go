// Package credentials is the durable Credential Store: four scalar keys
// (access token, refresh token, user id, role) kept in the local SQLite
// "metadata" table.
//
// Single-key operations are atomic. Save writes the whole record in one
// transaction, so a crash can never leave a role without its token or the
// reverse. An absent key means logged out; there is no schema versioning.
//
// When built with a device secret the values are sealed at rest with
// AES-GCM under an Argon2id-derived key. The salt lives in the same table
// under a key that Clear never touches.
package credentials
