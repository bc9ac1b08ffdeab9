// Package cli provides the interactive civic client.
//
// It wires configuration, the local store (SQLite or Redis), the REST client
// and the session services, then runs a REPL whose commands depend on the
// screen the session resolved to:
//   - first-time: onboard
//   - anon-setup: anonsetup, personas
//   - main: profile, XP, trust, streak, badges, permissions and the staff
//     admin commands
//
// A background watcher pings the backend and flips between online and
// offline mode. See App.Run and runREPL.
package cli
