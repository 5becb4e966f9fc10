// Package client contains the transport layer of the session core.
//
// # Overview
//
// The package provides:
//  1. The backend REST contract (see the Client interface): registration,
//     login, token refresh, password recovery, two-factor management,
//     profile and cart endpoints.
//  2. A JSON/HTTP implementation (see HTTPClient) that tags every request
//     with an X-Request-ID, attaches bearer tokens, applies an optional
//     client-side rate limit and maps responses into the error taxonomy.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. A non-2xx response is a
// *ServerError whose Message is taken from the body's "message" or "error"
// field, falling back to DefaultServerMessage. ServerError matches
// ErrUnauthorized, ErrForbidden and ErrNotFound via errors.Is. Bodies that
// cannot be decoded wrap ErrUnexpectedResponse.
//
// HTTPClient is safe for concurrent use. It never stores tokens; callers
// pass them per request.
package client
