package authstate

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// State is the decoded content of the four auth keys.
type State struct {
	Accounts []models.Account
	Session  *models.Session
	Pending  []models.PendingOperation
	LastSync *time.Time
}

// normalizeEmail is the comparison form of an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindAccount returns the account registered under email, or nil.
func (s *State) FindAccount(email string) *models.Account {
	key := normalizeEmail(email)
	for i := range s.Accounts {
		if normalizeEmail(s.Accounts[i].Email) == key {
			return &s.Accounts[i]
		}
	}
	return nil
}

// UpsertAccount replaces the account with the same email or appends a.
// It returns a pointer to the stored copy.
func (s *State) UpsertAccount(a models.Account) *models.Account {
	if existing := s.FindAccount(a.Email); existing != nil {
		*existing = a
		return existing
	}
	s.Accounts = append(s.Accounts, a)
	return &s.Accounts[len(s.Accounts)-1]
}

// Enqueue appends op to the pending queue.
func (s *State) Enqueue(op models.PendingOperation) {
	s.Pending = append(s.Pending, op)
}

// RemovePending drops the operations whose IDs are listed and reports how
// many were removed.
func (s *State) RemovePending(ids ...string) int {
	before := len(s.Pending)
	s.Pending = slices.DeleteFunc(s.Pending, func(op models.PendingOperation) bool {
		return slices.Contains(ids, op.ID)
	})
	return before - len(s.Pending)
}

// DropPendingFor removes every pending operation for email. Used when the
// account is confirmed by the remote through another path.
func (s *State) DropPendingFor(email string) int {
	key := normalizeEmail(email)
	before := len(s.Pending)
	s.Pending = slices.DeleteFunc(s.Pending, func(op models.PendingOperation) bool {
		return normalizeEmail(op.Payload.Email) == key
	})
	return before - len(s.Pending)
}
