// Package kv is the device-local key-value store that holds the persisted
// session: onboarding flags, the user record with its backup and the staff
// token. Three backends share the Store contract: SQLite (default), Postgres
// and Redis, the last two for kiosk devices sharing one profile store.
//
// Get returns (nil, nil) for an absent key. SetMany applies all pairs or none.
package kv
