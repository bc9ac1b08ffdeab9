// Package client contains the client-side building blocks that talk to the
// civic backend and open local storage.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): user
//     fetch and sync, XP and trust events, staff login/logout, admin role
//     management and admin content CRUD.
//  2. A REST/JSON implementation (see HTTPClient) that injects the staff
//     bearer token and maps HTTP statuses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable (transport failure or 5xx), ErrUnauthorized (401/403),
// ErrNotFound (404) and ErrBadRequest (400/422).
//
// HTTPClient is safe for concurrent use. All operations honor context
// cancellation.
package client
