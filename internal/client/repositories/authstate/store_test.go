package authstate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func putRaw(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?)`, key, []byte(value))
	require.NoError(t, err)
}

func TestLoad_EmptyStore(t *testing.T) {
	s := NewStore(setupDB(t))

	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Accounts)
	assert.Nil(t, st.Session)
	assert.Empty(t, st.Pending)
	assert.Nil(t, st.LastSync)
}

func TestUpdate_PersistsAllKeys(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	acc := models.Account{ID: "u1", Email: "a@x.com", PasswordDigest: "d", CreatedAt: now, SyncStatus: models.SyncStatusPending}
	err := s.Update(ctx, func(st *State) error {
		st.UpsertAccount(acc)
		st.Enqueue(models.PendingOperation{ID: "op1", Kind: models.OperationRegister,
			Payload: models.Credentials{Email: "a@x.com", Password: "secret1"}, EnqueuedAt: now})
		st.Session = &models.Session{User: acc.User(), StartedAt: now}
		st.LastSync = &now
		return nil
	})
	require.NoError(t, err)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Accounts, 1)
	assert.Equal(t, acc, st.Accounts[0])
	require.Len(t, st.Pending, 1)
	assert.Equal(t, "secret1", st.Pending[0].Payload.Password)
	require.NotNil(t, st.Session)
	assert.Equal(t, "u1", st.Session.User.ID)
	require.NotNil(t, st.LastSync)
	assert.True(t, now.Equal(*st.LastSync))

	session, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", session.User.Email)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(*last))
}

func TestUpdate_FnErrorWritesNothing(t *testing.T) {
	s := NewStore(setupDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(st *State) error {
		st.UpsertAccount(models.Account{ID: "u1", Email: "a@x.com"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Accounts)
}

func TestUpdate_NilSessionRemovesKey(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, &models.Session{User: models.User{ID: "u1"}}))
	require.NoError(t, s.Update(ctx, func(st *State) error {
		st.Session = nil
		return nil
	}))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata WHERE key = ?`, KeyCurrentUser).Scan(&n))
	assert.Zero(t, n)
}

func TestSetSession_NilDeletes(t *testing.T) {
	s := NewStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, &models.Session{User: models.User{ID: "u1", Email: "a@x.com"}}))
	got, err := s.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, s.SetSession(ctx, nil))
	got, err = s.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoad_CorruptedJSON(t *testing.T) {
	for _, key := range Keys {
		t.Run(key, func(t *testing.T) {
			db := setupDB(t)
			putRaw(t, db, key, `{not json`)

			_, err := NewStore(db).Load(context.Background())
			require.ErrorIs(t, err, ErrCorrupted)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestUpdate_CorruptedStateAborts(t *testing.T) {
	db := setupDB(t)
	putRaw(t, db, KeyUsers, `"not a list"`)

	called := false
	err := NewStore(db).Update(context.Background(), func(st *State) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrCorrupted)
	assert.False(t, called)
}

func TestClear_KeepsForeignKeys(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	ctx := context.Background()

	putRaw(t, db, "theme", `"dark"`)
	require.NoError(t, s.Update(ctx, func(st *State) error {
		st.UpsertAccount(models.Account{ID: "u1", Email: "a@x.com"})
		st.Session = &models.Session{User: models.User{ID: "u1"}}
		return nil
	}))

	require.NoError(t, s.Clear(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Equal(t, 1, n)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Accounts)
	assert.Nil(t, st.Session)
}
