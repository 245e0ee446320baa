package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/healthhub/shopctl/internal/api"
)

// User is the backend's view of the logged-in account, as returned by the
// login endpoint.
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// Result is the outcome of a login attempt. Expected failures (bad
// credentials, unreachable backend) are reported here, never as an error.
type Result struct {
	Success bool
	Message string
}

// persisted mirrors the two durable values the session keeps: the bearer
// token and the serialized identity. Both are present or the file is ignored.
type persisted struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

const sessionFile = "session.json"

// Store is the single source of truth for who is logged in. State is held in
// memory and persisted to a session file so it survives restarts.
type Store struct {
	dir string

	mu    sync.Mutex
	token string
	user  *User

	watched  *api.Client
	unwatch  func()
	onLogout func()
}

// Open loads any previously persisted session from dir (default ~/.shopctl)
// into memory. It completes before returning, so dependent components never
// observe a spurious logged-out state on startup.
func Open(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".shopctl")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s := &Store{dir: dir}
	s.load()

	log.Debug().Str("dir", dir).Bool("loggedIn", s.token != "").Msg("session store initialized")

	return s, nil
}

// load reads the persisted token/identity pair. A missing file, or a file
// with either value absent, leaves the store empty.
func (s *Store) load() {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		return
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" || p.User == "" {
		return
	}

	var u User
	if err := json.Unmarshal([]byte(p.User), &u); err != nil {
		log.Warn().Err(err).Msg("persisted identity is unreadable, starting logged out")
		return
	}

	s.token = p.Token
	s.user = &u
}

// Token returns the current bearer credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current identity. ok is false when logged out.
func (s *Store) User() (u User, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a credential is present.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

type loginResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Token string `json:"token"`
		User
	} `json:"data"`
}

// Login exchanges email/password at the backend. On success the identity and
// credential are stored in memory and on disk, and the expiry watch is
// re-established for the new credential.
func (s *Store) Login(ctx context.Context, c *api.Client, email, password string) Result {
	var resp loginResponse
	err := c.Post(ctx, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return Result{Message: apiErr.Message}
		}
		log.Error().Err(err).Msg("login request failed")
		return Result{Message: "Failed to login"}
	}

	if !resp.Success || resp.Data == nil || resp.Data.Token == "" {
		return Result{Message: "Invalid credentials"}
	}

	u := resp.Data.User

	s.mu.Lock()
	s.token = resp.Data.Token
	s.user = &u
	s.rewatchLocked()
	err = s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("failed to persist session, login valid for this process only")
	}

	log.Info().Str("user", u.Email).Msg("logged in")

	return Result{Success: true}
}

// Logout clears in-memory and durable state unconditionally. It never fails;
// a persistence error is logged and the in-memory state is still cleared.
func (s *Store) Logout() {
	s.mu.Lock()
	hadUser := s.user != nil
	s.token = ""
	s.user = nil
	s.rewatchLocked()
	if err := os.Remove(filepath.Join(s.dir, sessionFile)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to remove persisted session")
	}
	hook := s.onLogout
	s.mu.Unlock()

	if hadUser {
		log.Info().Msg("logged out")
	}
	if hook != nil {
		hook()
	}
}

// OnLogout registers the redirect hook invoked after every Logout, including
// automatic logouts triggered by the expiry watch.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = fn
}

// Watch attaches the expiry watch to c: any response signalling an expired
// credential forces Logout. The watch closes over the credential current at
// registration time and is re-registered whenever the credential changes, so
// a response belonging to an older credential cannot log out a newer session.
func (s *Store) Watch(c *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = c
	s.rewatchLocked()
}

// Close removes the expiry watch. The store remains usable for reads.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
	s.watched = nil
}

func (s *Store) rewatchLocked() {
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
	if s.watched == nil || s.token == "" {
		return
	}

	tok := s.token
	s.unwatch = s.watched.Subscribe(func(e *api.Error) {
		if !e.AuthExpired() {
			return
		}
		s.mu.Lock()
		current := s.token == tok
		s.mu.Unlock()
		if !current {
			return
		}
		log.Warn().Int("status", e.Status).Msg("credential expired, logging out")
		s.Logout()
	})
}

// saveLocked persists the token/identity pair atomically (temp file + rename).
func (s *Store) saveLocked() error {
	userJSON, err := json.Marshal(s.user)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	data, err := json.MarshalIndent(persisted{Token: s.token, User: string(userJSON)}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := filepath.Join(s.dir, sessionFile)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
