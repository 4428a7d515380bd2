package authstate

import (
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAccount_CaseInsensitive(t *testing.T) {
	st := &State{Accounts: []models.Account{{ID: "u1", Email: "Alice@Example.com"}}}

	got := st.FindAccount("  alice@example.COM ")
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Nil(t, st.FindAccount("bob@example.com"))
}

func TestUpsertAccount_ReplacesByEmail(t *testing.T) {
	st := &State{}
	st.UpsertAccount(models.Account{ID: "u1", Email: "a@x.com", SyncStatus: models.SyncStatusPending})
	st.UpsertAccount(models.Account{ID: "u2", Email: "b@x.com"})

	stored := st.UpsertAccount(models.Account{ID: "u1", Email: "a@x.com", SyncStatus: models.SyncStatusSynced})

	require.Len(t, st.Accounts, 2)
	assert.Equal(t, models.SyncStatusSynced, st.Accounts[0].SyncStatus)
	assert.Same(t, &st.Accounts[0], stored)
}

func TestRemovePending(t *testing.T) {
	st := &State{Pending: []models.PendingOperation{{ID: "1"}, {ID: "2"}, {ID: "3"}}}

	assert.Equal(t, 2, st.RemovePending("1", "3", "missing"))
	require.Len(t, st.Pending, 1)
	assert.Equal(t, "2", st.Pending[0].ID)
	assert.Zero(t, st.RemovePending())
}

func TestDropPendingFor(t *testing.T) {
	st := &State{Pending: []models.PendingOperation{
		{ID: "1", Payload: models.Credentials{Email: "a@x.com"}},
		{ID: "2", Payload: models.Credentials{Email: "b@x.com"}},
		{ID: "3", Payload: models.Credentials{Email: "A@X.com"}},
	}}

	assert.Equal(t, 2, st.DropPendingFor("a@x.com"))
	require.Len(t, st.Pending, 1)
	assert.Equal(t, "2", st.Pending[0].ID)
}
