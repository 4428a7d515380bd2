package services

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
)

// Option customizes the auth service.
type Option func(*authService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for accounts and
// pending operations.
func WithIDGenerator(gen func() string) Option {
	return func(s *authService) { s.newID = gen }
}

// WithMinPasswordLength sets the shortest password accepted by Register.
func WithMinPasswordLength(n int) Option {
	return func(s *authService) { s.minPasswordLen = n }
}

// WithHashParams sets the argon2id cost used for new password digests.
func WithHashParams(p cryptox.Params) Option {
	return func(s *authService) { s.hashParams = p }
}
