// Package services contains application services for the taskkeeper client.
// This file defines the authentication service: register and login that
// prefer the remote service and fall back to the local store, the health
// probe, and replay of operations that only reached the local store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/netwatch"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/authstate"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/google/uuid"
)

const DefaultMinPasswordLength = 6

// AuthResult is the success result of Register and Login.
type AuthResult struct {
	User    models.User
	Source  models.Source
	Message string
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register, Login: try the remote service when it is reachable, otherwise
//     (or on any remote failure) serve the call from the local store.
//   - Logout, CurrentUser, IsAuthenticated: work on the persisted session only.
//   - CheckServerAvailability: probe the remote; on success replay pending
//     operations.
//   - SyncPendingData: replay queued local registrations.
//   - ConnectionStatus: snapshot for presentation.
//   - ClearLocalData: wipe all locally cached auth state.
//   - Close: unsubscribe from the network monitor, wait for background
//     probes and release the client.
//
// Failures are returned as *AuthError.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.Session, error)
	IsAuthenticated(ctx context.Context) bool
	CheckServerAvailability(ctx context.Context) bool
	SyncPendingData(ctx context.Context) (int, error)
	ConnectionStatus(ctx context.Context) models.ConnectionStatus
	ClearLocalData(ctx context.Context) error
	// Ready is closed once the probe started at construction has finished.
	Ready() <-chan struct{}
	Close() error
}

type authService struct {
	client  client.Client
	store   *authstate.Store
	monitor netwatch.Monitor
	log     logging.Logger

	now            func() time.Time
	newID          func() string
	minPasswordLen int
	hashParams     cryptox.Params

	// localMu serializes read-modify-write cycles on the store.
	localMu sync.Mutex

	stateMu          sync.RWMutex
	networkReachable bool
	remoteReachable  bool

	syncing atomic.Bool

	bgMu        sync.Mutex
	bgClosed    bool
	bg          sync.WaitGroup
	bgCtx       context.Context
	bgCancel    context.CancelFunc
	unsubscribe func()
	ready       chan struct{}
	closeOnce   sync.Once
	closeErr    error
}

// NewAuthService reads the current network state, subscribes to network
// changes and starts the first health probe in the background. The remote
// service counts as unreachable until that probe succeeds.
func NewAuthService(c client.Client, store *authstate.Store, monitor netwatch.Monitor, log logging.Logger, opts ...Option) AuthService {
	s := &authService{
		client:         c,
		store:          store,
		monitor:        monitor,
		log:            log,
		now:            time.Now,
		newID:          uuid.NewString,
		minPasswordLen: DefaultMinPasswordLength,
		hashParams:     cryptox.DefaultParams,
		ready:          make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())

	s.networkReachable = monitor.Online()
	s.unsubscribe = monitor.OnNetworkChange(s.handleNetworkChange)

	if !s.goBackground(func(ctx context.Context) {
		defer close(s.ready)
		s.CheckServerAvailability(ctx)
	}) {
		close(s.ready)
	}
	return s
}

func (s *authService) Ready() <-chan struct{} { return s.ready }

// goBackground runs fn in a goroutine tracked by Close. It reports false
// if the service is already closed.
func (s *authService) goBackground(fn func(ctx context.Context)) bool {
	s.bgMu.Lock()
	defer s.bgMu.Unlock()
	if s.bgClosed {
		return false
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(s.bgCtx)
	}()
	return true
}

func (s *authService) handleNetworkChange(online bool) {
	ctx := context.Background()
	if !online {
		s.stateMu.Lock()
		s.networkReachable = false
		s.stateMu.Unlock()
		s.setRemoteReachable(ctx, false)
		s.log.Info(ctx, "network went offline")
		return
	}

	s.stateMu.Lock()
	s.networkReachable = true
	s.stateMu.Unlock()
	s.log.Info(ctx, "network is back, probing server")
	s.goBackground(func(ctx context.Context) {
		s.CheckServerAvailability(ctx)
	})
}

func (s *authService) isNetworkReachable() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.networkReachable
}

// remoteAvailable reports whether calls should go to the remote first.
func (s *authService) remoteAvailable() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.networkReachable && s.remoteReachable
}

func (s *authService) setRemoteReachable(ctx context.Context, ok bool) {
	s.stateMu.Lock()
	changed := s.remoteReachable != ok
	s.remoteReachable = ok
	s.stateMu.Unlock()

	if ok {
		serverAvailableGauge.Set(1)
	} else {
		serverAvailableGauge.Set(0)
	}
	if changed {
		s.log.Info(ctx, "server availability changed", "available", ok)
	}
}

// CheckServerAvailability probes the health endpoint, then the service root
// where a 404 still counts as reachable. On success pending operations are
// replayed before it returns. It never fails; every error means false.
func (s *authService) CheckServerAvailability(ctx context.Context) bool {
	if !s.isNetworkReachable() {
		s.setRemoteReachable(ctx, false)
		return false
	}

	ok := s.probe(ctx)
	s.setRemoteReachable(ctx, ok)
	if !ok {
		return false
	}

	if _, err := s.SyncPendingData(ctx); err != nil {
		s.log.Warn(ctx, "sync after probe failed", "error", err)
	}
	return true
}

func (s *authService) probe(ctx context.Context) bool {
	err := s.client.Health(ctx)
	if err == nil {
		return true
	}
	s.log.Debug(ctx, "health check failed, probing root", "error", err)

	if err := s.client.ProbeRoot(ctx); err != nil {
		s.log.Debug(ctx, "root probe failed", "error", err)
		return false
	}
	return true
}

// demote records a remote failure and marks the service unreachable.
func (s *authService) demote(ctx context.Context, op string, err error) {
	authFallbackTotal.WithLabelValues(op).Inc()
	s.log.Warn(ctx, "remote call failed, using local store", "operation", op, "error", err)
	s.setRemoteReachable(ctx, false)
}

// update runs fn on the stored state under the local mutex, in one transaction.
func (s *authService) update(ctx context.Context, fn func(st *authstate.State) error) error {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	pending := -1
	err := s.store.Update(ctx, func(st *authstate.State) error {
		if err := fn(st); err != nil {
			return err
		}
		pending = len(st.Pending)
		return nil
	})
	if err == nil && pending >= 0 {
		pendingOperationsGauge.Set(float64(pending))
	}
	return err
}

func (s *authService) storageError(ctx context.Context, op string, source models.Source, err error) error {
	s.log.Error(ctx, "local storage failure", "operation", op, "error", err)
	authOperationsTotal.WithLabelValues(op, string(source), resultFailed).Inc()
	return &AuthError{Source: source, Err: fmt.Errorf("%w: %w", ErrLocalStorage, err)}
}

func (s *authService) fail(op string, source models.Source, err error) error {
	authOperationsTotal.WithLabelValues(op, string(source), resultFailed).Inc()
	return &AuthError{Source: source, Err: err}
}

func (s *authService) succeed(op string, user models.User, source models.Source, msg string) *AuthResult {
	authOperationsTotal.WithLabelValues(op, string(source), resultOK).Inc()
	return &AuthResult{User: user, Source: source, Message: msg}
}

// Register creates an account. Remote failures of any kind fall back to a
// local registration that is queued for replay.
func (s *authService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password, s.minPasswordLen); err != nil {
		return nil, s.fail("register", models.SourceValidation, err)
	}

	if s.remoteAvailable() {
		resp, err := s.client.Register(ctx, email, password)
		if err == nil {
			user, err := s.storeRemoteAccount(ctx, email, password, resp)
			if err != nil {
				return nil, s.storageError(ctx, "register", models.SourceRemote, err)
			}
			return s.succeed("register", user, models.SourceRemote, messageOr(resp.Message, "User registered successfully")), nil
		}
		s.demote(ctx, "register", err)
	}

	return s.registerLocally(ctx, email, password)
}

func (s *authService) registerLocally(ctx context.Context, email, password string) (*AuthResult, error) {
	digest, err := cryptox.HashPasswordWithParams([]byte(password), s.hashParams)
	if err != nil {
		return nil, s.storageError(ctx, "register", models.SourceLocal, err)
	}

	var acc models.Account
	err = s.update(ctx, func(st *authstate.State) error {
		if st.FindAccount(email) != nil {
			return ErrDuplicateAccount
		}

		now := s.now()
		acc = models.Account{
			ID:             s.newID(),
			Email:          email,
			PasswordDigest: digest,
			CreatedAt:      now,
			SyncStatus:     models.SyncStatusPending,
		}
		st.UpsertAccount(acc)
		st.Enqueue(models.PendingOperation{
			ID:         s.newID(),
			Kind:       models.OperationRegister,
			Payload:    models.Credentials{Email: email, Password: password},
			EnqueuedAt: now,
		})
		st.Session = &models.Session{User: acc.User(), StartedAt: now}
		return nil
	})
	if errors.Is(err, ErrDuplicateAccount) {
		return nil, s.fail("register", models.SourceLocal, ErrDuplicateAccount)
	}
	if err != nil {
		return nil, s.storageError(ctx, "register", models.SourceLocal, err)
	}

	s.log.Info(ctx, "registered locally, queued for sync", "user_id", acc.ID)
	return s.succeed("register", acc.User(), models.SourceLocal, "User registered successfully (offline mode)"), nil
}

// Login authenticates the user. It never queues a pending operation.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password, 0); err != nil {
		return nil, s.fail("login", models.SourceValidation, err)
	}

	if s.remoteAvailable() {
		resp, err := s.client.Login(ctx, email, password)
		if err == nil {
			user, err := s.storeRemoteAccount(ctx, email, password, resp)
			if err != nil {
				return nil, s.storageError(ctx, "login", models.SourceRemote, err)
			}
			return s.succeed("login", user, models.SourceRemote, messageOr(resp.Message, "Login successful")), nil
		}
		s.demote(ctx, "login", err)
	}

	return s.loginLocally(ctx, email, password)
}

func (s *authService) loginLocally(ctx context.Context, email, password string) (*AuthResult, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "login", models.SourceLocal, err)
	}

	acc := st.FindAccount(email)
	if acc == nil {
		return nil, s.fail("login", models.SourceLocal, ErrInvalidCredentials)
	}
	ok, err := cryptox.VerifyPassword([]byte(password), acc.PasswordDigest)
	if err != nil {
		s.log.Warn(ctx, "stored digest is unreadable", "user_id", acc.ID, "error", err)
	}
	if !ok {
		return nil, s.fail("login", models.SourceLocal, ErrInvalidCredentials)
	}

	var user models.User
	err = s.update(ctx, func(st *authstate.State) error {
		current := st.FindAccount(email)
		if current == nil || current.PasswordDigest != acc.PasswordDigest {
			return ErrInvalidCredentials
		}
		user = current.User()
		st.Session = &models.Session{User: user, StartedAt: s.now()}
		return nil
	})
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, s.fail("login", models.SourceLocal, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, s.storageError(ctx, "login", models.SourceLocal, err)
	}

	return s.succeed("login", user, models.SourceLocal, "Login successful (offline mode)"), nil
}

// storeRemoteAccount upserts an account confirmed by the remote, marks it
// synced, drops its queued operations and makes it the current session.
// A known account keeps its local ID.
func (s *authService) storeRemoteAccount(ctx context.Context, email, password string, resp *client.AuthResponse) (models.User, error) {
	digest, err := cryptox.HashPasswordWithParams([]byte(password), s.hashParams)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.update(ctx, func(st *authstate.State) error {
		now := s.now()
		acc := models.Account{
			ID:             resp.User.ID,
			Email:          email,
			PasswordDigest: digest,
			CreatedAt:      resp.User.CreatedAt,
			SyncStatus:     models.SyncStatusSynced,
		}
		if existing := st.FindAccount(email); existing != nil {
			acc.ID = existing.ID
			acc.RemoteID = existing.RemoteID
			acc.CreatedAt = existing.CreatedAt
			if resp.User.ID != "" && resp.User.ID != existing.ID {
				acc.RemoteID = resp.User.ID
			}
		}
		if acc.ID == "" {
			acc.ID = s.newID()
		}
		if acc.CreatedAt.IsZero() {
			acc.CreatedAt = now
		}

		stored := st.UpsertAccount(acc)
		if n := st.DropPendingFor(email); n > 0 {
			s.log.Info(ctx, "account confirmed by server, dropped queued operations", "user_id", stored.ID, "dropped", n)
		}

		user = stored.User()
		st.Session = &models.Session{
			User:           user,
			Token:          resp.Token,
			TokenExpiresAt: tokenExpiry(resp.Token),
			StartedAt:      now,
		}
		return nil
	})
	return user, err
}

// Logout clears the current session.
func (s *authService) Logout(ctx context.Context) error {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	if err := s.store.SetSession(ctx, nil); err != nil {
		return s.storageError(ctx, "logout", models.SourceLocal, err)
	}
	return nil
}

// CurrentUser returns the persisted session, or nil when nobody is logged in.
func (s *authService) CurrentUser(ctx context.Context) (*models.Session, error) {
	session, err := s.store.Session(ctx)
	if err != nil {
		return nil, &AuthError{Source: models.SourceLocal, Err: fmt.Errorf("%w: %w", ErrLocalStorage, err)}
	}
	return session, nil
}

func (s *authService) IsAuthenticated(ctx context.Context) bool {
	session, err := s.CurrentUser(ctx)
	return err == nil && session != nil
}

// SyncPendingData replays queued registrations while the remote is
// reachable and returns how many succeeded. Failed entries stay queued.
// Entries whose account is already synced are dropped without a remote call.
// A call made while another sync runs returns 0 immediately.
func (s *authService) SyncPendingData(ctx context.Context) (int, error) {
	if !s.remoteAvailable() {
		return 0, nil
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.syncing.Store(false)

	st, err := s.store.Load(ctx)
	if err != nil {
		return 0, s.storageError(ctx, "sync", models.SourceLocal, err)
	}
	if len(st.Pending) == 0 {
		return 0, nil
	}

	replayed := make(map[string]*client.AuthResponse)
	var done []string

	for _, op := range st.Pending {
		if op.Kind != models.OperationRegister {
			s.log.Warn(ctx, "skipping pending operation of unknown kind", "id", op.ID, "kind", op.Kind)
			continue
		}
		if acc := st.FindAccount(op.Payload.Email); acc != nil && acc.SyncStatus == models.SyncStatusSynced {
			done = append(done, op.ID)
			continue
		}

		resp, err := s.client.Register(ctx, op.Payload.Email, op.Payload.Password)
		if err != nil {
			syncReplayTotal.WithLabelValues(resultFailed).Inc()
			s.log.Warn(ctx, "replay failed, keeping operation queued", "id", op.ID, "error", err)
			if errors.Is(err, client.ErrUnavailable) {
				s.setRemoteReachable(ctx, false)
				break
			}
			continue
		}
		syncReplayTotal.WithLabelValues(resultOK).Inc()
		replayed[op.ID] = resp
		done = append(done, op.ID)
	}

	if len(done) == 0 {
		return 0, nil
	}

	err = s.update(ctx, func(st *authstate.State) error {
		for _, op := range st.Pending {
			resp, ok := replayed[op.ID]
			if !ok {
				continue
			}
			acc := st.FindAccount(op.Payload.Email)
			if acc == nil {
				continue
			}
			acc.SyncStatus = models.SyncStatusSynced
			if resp != nil && resp.User.ID != "" && resp.User.ID != acc.ID {
				acc.RemoteID = resp.User.ID
			}
		}
		if st.RemovePending(done...) > 0 {
			now := s.now()
			st.LastSync = &now
		}
		return nil
	})
	if err != nil {
		return 0, s.storageError(ctx, "sync", models.SourceLocal, err)
	}

	s.log.Info(ctx, "pending operations synced", "replayed", len(replayed), "removed", len(done))
	return len(replayed), nil
}

// ConnectionStatus returns a snapshot of connectivity and queue state.
// Storage errors are logged and reported as an empty queue.
func (s *authService) ConnectionStatus(ctx context.Context) models.ConnectionStatus {
	s.stateMu.RLock()
	status := models.ConnectionStatus{
		NetworkReachable:       s.networkReachable,
		RemoteServiceReachable: s.remoteReachable,
	}
	s.stateMu.RUnlock()

	st, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot read local auth state", "error", err)
		return status
	}
	status.PendingOperations = len(st.Pending)
	status.LastSuccessfulSync = st.LastSync
	return status
}

// ClearLocalData wipes accounts, session, queue and sync time.
func (s *authService) ClearLocalData(ctx context.Context) error {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return s.storageError(ctx, "clear", models.SourceLocal, err)
	}
	pendingOperationsGauge.Set(0)
	return nil
}

// Close is idempotent.
func (s *authService) Close() error {
	s.closeOnce.Do(func() {
		s.unsubscribe()

		s.bgMu.Lock()
		s.bgClosed = true
		s.bgMu.Unlock()

		s.bgCancel()
		s.bg.Wait()
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
