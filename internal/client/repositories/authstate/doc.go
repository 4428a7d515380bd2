// Package authstate keeps the offline authentication state in the metadata
// key/value store.
//
// Four keys are used, each holding one JSON document:
//
//	offline_auth_users         []models.Account
//	offline_auth_current_user  models.Session
//	offline_auth_pending_sync  []models.PendingOperation
//	offline_auth_last_sync     time.Time
//
// Reads go straight to the database. Writes go through Store.Update, which
// loads every key, applies the caller's mutation to an in-memory State and
// writes the result back in a single transaction.
package authstate
