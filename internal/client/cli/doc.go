// Package cli provides the interactive taskkeeper command-line client.
//
// It wraps an AuthService in a small REPL. Typical flow: register or log in
// (online when the server answers, offline otherwise), watch the mode in the
// prompt, and run sync once the server is back. A background watcher probes
// the server every OnlineCheckInterval; a successful probe replays pending
// registrations.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
