package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/appetiteclub/apt"

	"github.com/brewbarclub/brewbar/internal/api"
)

// Store holds the signed-in user and bearer token, mirrored to a JSON file so
// a restarted process resumes the same session. All mutation happens from
// completed request callbacks, never speculatively.
type Store struct {
	mu     sync.RWMutex
	path   string
	token  string
	user   *api.User
	logger apt.Logger
}

type persisted struct {
	Token string    `json:"token"`
	User  *api.User `json:"user,omitempty"`
}

// NewStore creates a store backed by the file at path and restores any
// previously persisted session. An unreadable or corrupt file is treated as
// signed out, not as an error.
func NewStore(path string, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	s := &Store{
		path:   path,
		logger: logger,
	}
	s.restore()
	return s
}

// DefaultPath returns the session file location under the user's home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "brewbar-session.json")
	}
	return filepath.Join(home, ".brewbar", "session.json")
}

func (s *Store) restore() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Info("discarding corrupt session file", "path", s.path, "error", err)
		return
	}
	if p.Token == "" {
		return
	}

	s.token = p.Token
	s.user = p.User
	s.logger.Debug("session restored", "path", s.path)
}

// SetSession stores a fresh token and user after login or registration.
func (s *Store) SetSession(token string, user api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = &user
	return s.persistLocked()
}

// UpdateUser replaces the mirrored user record after a profile, loyalty or
// order-completion response.
func (s *Store) UpdateUser(user api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return fmt.Errorf("no active session")
	}
	s.user = &user
	return s.persistLocked()
}

// Clear wipes the session in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Token returns the current bearer token, or "" when signed out.
// Satisfies api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Store) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// CanOperateQueue reports whether the signed-in user may work the barista
// queue. Role gating at the UI boundary only; the server enforces for real.
func (s *Store) CanOperateQueue() bool {
	user, ok := s.User()
	if !ok {
		return false
	}
	return user.Role == api.RoleBarista || user.Role == api.RoleAdmin
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(persisted{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
