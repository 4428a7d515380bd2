// Package remotetest provides an in-memory implementation of the remote auth
// service wire contract for tests. Serve it with httptest.NewServer.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/google/uuid"
)

// User is a stored account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`

	digest string
}

// Server is a fake remote auth service. It is safe for concurrent use.
type Server struct {
	mu          sync.Mutex
	users       map[string]*User
	secret      []byte
	tokenTTL    time.Duration
	down        bool
	healthRoute bool
	hits        map[string]int
	hashParams  cryptox.Params
	now         func() time.Time

	mux *http.ServeMux
}

type Option func(*Server)

// WithoutHealthRoute makes /api/health answer 404 so clients must fall back
// to the root probe.
func WithoutHealthRoute() Option {
	return func(s *Server) { s.healthRoute = false }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		users:       make(map[string]*User),
		secret:      common.GenerateRandByteArray(32),
		tokenTTL:    time.Hour,
		healthRoute: true,
		hits:        make(map[string]int),
		hashParams:  cryptox.Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16},
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /api/health", s.health)
	s.mux.HandleFunc("POST /api/register", s.register)
	s.mux.HandleFunc("POST /api/login", s.login)
	s.mux.HandleFunc("GET /api/users", s.listUsers)
	s.mux.HandleFunc("GET /{$}", s.root)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.Method+" "+r.URL.Path]++
	down := s.down
	s.mu.Unlock()

	if down {
		writeJSON(w, http.StatusServiceUnavailable, response{Message: "Service unavailable"})
		return
	}
	s.mux.ServeHTTP(w, r)
}

// SetDown makes every route answer 503 while down is true.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// Hits reports how many requests reached "METHOD /path".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Users returns a copy of the stored users.
func (s *Server) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// VerifyToken returns the user id carried by a token this server issued.
func (s *Server) VerifyToken(token string) (string, error) {
	return UserIDFromToken(token, s.secret)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Users   []User `json:"users,omitempty"`
	Token   string `json:"token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set(common.HeaderContentType, common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	enabled := s.healthRoute
	s.mu.Unlock()

	if !enabled {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "ok"})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(common.HeaderContentType, "text/html; charset=utf-8")
	fmt.Fprintln(w, "<!doctype html><title>taskkeeper</title>")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Malformed request body"})
		return c, false
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Email == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, response{Message: "Email and password are required"})
		return c, false
	}
	return c, true
}

func (s *Server) issue(w http.ResponseWriter, status int, msg string, u *User) {
	token, err := GenerateToken(u.ID, s.secret, s.now().Add(s.tokenTTL))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error"})
		return
	}
	out := *u
	writeJSON(w, status, response{Success: true, Message: msg, User: &out, Token: token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decode(w, r)
	if !ok {
		return
	}
	if len(c.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, response{Message: "Password must be at least 6 characters long"})
		return
	}

	digest, err := cryptox.HashPasswordWithParams([]byte(c.Password), s.hashParams)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error"})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[c.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, response{Message: "User with this email already exists"})
		return
	}
	u := &User{ID: uuid.NewString(), Email: c.Email, CreatedAt: s.now().UTC(), digest: digest}
	s.users[c.Email] = u
	s.mu.Unlock()

	s.issue(w, http.StatusCreated, "User registered successfully", u)
}

func (s *Server) lookup(email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decode(w, r)
	if !ok {
		return
	}

	u, err := s.lookup(c.Email)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, response{Message: "Invalid email or password"})
		return
	}
	match, err := cryptox.VerifyPassword([]byte(c.Password), u.digest)
	if err != nil || !match {
		writeJSON(w, http.StatusUnauthorized, response{Message: "Invalid email or password"})
		return
	}

	s.issue(w, http.StatusOK, "Login successful", u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true, Users: s.Users()})
}
