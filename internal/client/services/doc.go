// Package services holds the client-side state model: the session state
// struct, the bootstrapper that picks the first screen, the XP/trust/streak
// ledger, background sync and the staff (admin) service.
//
// Local storage is the source of truth for the UI. Remote calls made after a
// local mutation run in the background through Syncer and never roll the
// mutation back.
package services
