// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. A transport-agnostic contract for the remote auth service (see the
//     Client interface): Register, Login, Health, ProbeRoot and ListUsers.
//  2. An HTTP/JSON implementation (see HTTPClient). Every call is bounded by
//     the configured timeout. Non-2xx answers become *RemoteError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations), opening an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures and timeouts wrap ErrUnavailable. A *RemoteError
// unwraps to ErrUnauthorized for 401 and to ErrRejected otherwise. Match
// with errors.Is and errors.As.
package client
