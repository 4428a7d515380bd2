package authstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

const (
	KeyUsers       = "offline_auth_users"
	KeyCurrentUser = "offline_auth_current_user"
	KeyPendingSync = "offline_auth_pending_sync"
	KeyLastSync    = "offline_auth_last_sync"
)

// Keys lists every key owned by the auth layer.
var Keys = []string{KeyUsers, KeyCurrentUser, KeyPendingSync, KeyLastSync}

// ErrCorrupted is returned when a stored document cannot be decoded.
var ErrCorrupted = errors.New("local auth state is corrupted")

// Store gives typed access to the auth keys of the metadata table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Load reads and decodes all four keys.
func (s *Store) Load(ctx context.Context) (*State, error) {
	return load(ctx, s.repo(s.db))
}

// Session returns the current session or nil when nobody is logged in.
func (s *Store) Session(ctx context.Context) (*models.Session, error) {
	var session *models.Session
	if err := getJSON(ctx, s.repo(s.db), KeyCurrentUser, &session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetSession stores session as the current one; nil removes it.
func (s *Store) SetSession(ctx context.Context, session *models.Session) error {
	repo := s.repo(s.db)
	if session == nil {
		return repo.Delete(ctx, KeyCurrentUser)
	}
	return setJSON(ctx, repo, KeyCurrentUser, session)
}

// Pending returns the queue of operations awaiting replay, oldest first.
func (s *Store) Pending(ctx context.Context) ([]models.PendingOperation, error) {
	var pending []models.PendingOperation
	if err := getJSON(ctx, s.repo(s.db), KeyPendingSync, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// LastSync returns the time of the last sync that replayed something.
func (s *Store) LastSync(ctx context.Context) (*time.Time, error) {
	var ts *time.Time
	if err := getJSON(ctx, s.repo(s.db), KeyLastSync, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// Update loads the state inside a transaction, applies fn and persists the
// result. If fn returns an error nothing is written.
func (s *Store) Update(ctx context.Context, fn func(st *State) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)

		st, err := load(ctx, repo)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		return save(ctx, repo, st)
	})
}

// Clear removes every auth key, leaving unrelated metadata alone.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo(s.db).DeleteKeys(ctx, Keys...)
}

func load(ctx context.Context, repo metadata.Repository) (*State, error) {
	st := &State{}
	if err := getJSON(ctx, repo, KeyUsers, &st.Accounts); err != nil {
		return nil, err
	}
	if err := getJSON(ctx, repo, KeyCurrentUser, &st.Session); err != nil {
		return nil, err
	}
	if err := getJSON(ctx, repo, KeyPendingSync, &st.Pending); err != nil {
		return nil, err
	}
	if err := getJSON(ctx, repo, KeyLastSync, &st.LastSync); err != nil {
		return nil, err
	}
	return st, nil
}

func save(ctx context.Context, repo metadata.Repository, st *State) error {
	if st.Accounts == nil {
		st.Accounts = []models.Account{}
	}
	if st.Pending == nil {
		st.Pending = []models.PendingOperation{}
	}
	if err := setJSON(ctx, repo, KeyUsers, st.Accounts); err != nil {
		return err
	}
	if err := setJSON(ctx, repo, KeyPendingSync, st.Pending); err != nil {
		return err
	}

	if st.Session == nil {
		if err := repo.Delete(ctx, KeyCurrentUser); err != nil {
			return err
		}
	} else if err := setJSON(ctx, repo, KeyCurrentUser, st.Session); err != nil {
		return err
	}

	if st.LastSync == nil {
		return repo.Delete(ctx, KeyLastSync)
	}
	return setJSON(ctx, repo, KeyLastSync, st.LastSync)
}

// getJSON decodes key into dst; an absent key leaves dst untouched.
func getJSON(ctx context.Context, repo metadata.Repository, key string, dst any) error {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupted, key, err)
	}
	return nil
}

func setJSON(ctx context.Context, repo metadata.Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return repo.Set(ctx, key, raw)
}
