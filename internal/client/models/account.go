// Package models defines the client-side data models of the offline-first
// authentication layer: local accounts, the current session, the queue of
// operations awaiting replay, and the connectivity snapshot.
package models

import "time"

// SyncStatus tells whether an account is known to the remote service.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
)

// Source names the path that served an authentication call.
type Source string

const (
	SourceRemote     Source = "remote"
	SourceLocal      Source = "local"
	SourceValidation Source = "validation"
)

// User is the public part of an account. It never carries a password digest.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is a locally stored identity.
type Account struct {
	// ID is assigned locally on offline registration, or copied from the
	// remote when the account was first seen through the remote service.
	ID string `json:"id"`

	// RemoteID is the identifier the remote assigned on replay, if it differs.
	RemoteID string `json:"remoteId,omitempty"`

	// Email is the unique key of the account.
	Email string `json:"email"`

	// PasswordDigest is a salted argon2id digest (see cryptox).
	PasswordDigest string `json:"password"`

	CreatedAt  time.Time  `json:"createdAt"`
	SyncStatus SyncStatus `json:"syncStatus"`
}

// User returns the public projection of a.
func (a Account) User() User {
	return User{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt}
}

// Session is the persisted "logged in" marker. At most one exists.
type Session struct {
	User User `json:"user"`

	// Token is the bearer token returned by the remote, if any.
	Token string `json:"token,omitempty"`
	// TokenExpiresAt is read from the token's exp claim.
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`

	StartedAt time.Time `json:"startedAt"`
}

// OperationKind classifies a pending operation.
type OperationKind string

const (
	OperationRegister OperationKind = "register"
)

// Credentials is the payload of a register replay. The password is kept in
// plaintext because the remote expects it on replay.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PendingOperation is an authentication write that only reached the local
// store and still has to be replayed against the remote.
type PendingOperation struct {
	ID         string        `json:"id"`
	Kind       OperationKind `json:"operation"`
	Payload    Credentials   `json:"data"`
	EnqueuedAt time.Time     `json:"timestamp"`
}

// ConnectionStatus is a snapshot for presentation layers.
type ConnectionStatus struct {
	NetworkReachable       bool       `json:"isOnline"`
	RemoteServiceReachable bool       `json:"serverAvailable"`
	LastSuccessfulSync     *time.Time `json:"lastSync,omitempty"`
	PendingOperations      int        `json:"pendingOperations"`
}
