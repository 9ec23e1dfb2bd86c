// Package session persists the authenticated operator between runs.
// The session lives in a small TOML file (token plus profile) that is read
// once at startup and rewritten on login, register and logout.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// Snapshot is the persisted auth state. It is a value; callers never share
// the profile pointer with the store.
type Snapshot struct {
	Token string
	User  *nixtrack.UserProfile
}

// Authenticated reports whether the snapshot carries a token.
func (s Snapshot) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Expired reports whether the token's exp claim is before now. Tokens that
// cannot be parsed or carry no exp are not considered expired; the server
// remains the authority and answers 401.
func (s Snapshot) Expired(now time.Time) bool {
	exp, ok := expiry(s.Token)
	return ok && exp.Before(now)
}

// ExpiresAt returns the token's exp claim when present.
func (s Snapshot) ExpiresAt() (time.Time, bool) {
	return expiry(s.Token)
}

func expiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// file is the on-disk layout.
type file struct {
	Token string       `toml:"token"`
	User  *fileProfile `toml:"user,omitempty"`
}

type fileProfile struct {
	ID       int64  `toml:"id"`
	Name     string `toml:"name"`
	Email    string `toml:"email"`
	RoleID   int64  `toml:"role_id"`
	ClientID int64  `toml:"client_id"`
	IsActive int    `toml:"is_active"`
}

// Store reads and writes the session file.
type Store struct {
	path string
	mu   sync.Mutex
}

const defaultSessionPath = "~/.config/nixtrack/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// New returns a Store backed by path. An empty path selects DefaultPath.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultSessionPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}
	return &Store{path: resolved}, nil
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted snapshot. A missing file yields an empty snapshot.
func (s *Store) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read session: %w", err)
	}

	var f file
	if err := toml.Unmarshal(raw, &f); err != nil {
		return Snapshot{}, fmt.Errorf("parse session: %w", err)
	}
	snap := Snapshot{Token: strings.TrimSpace(f.Token)}
	if f.User != nil {
		snap.User = &nixtrack.UserProfile{
			ID:       f.User.ID,
			Name:     f.User.Name,
			Email:    f.User.Email,
			RoleID:   f.User.RoleID,
			ClientID: f.User.ClientID,
			IsActive: f.User.IsActive,
		}
	}
	return snap, nil
}

// Save writes snap, replacing any previous session.
func (s *Store) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := file{Token: snap.Token}
	if snap.User != nil {
		f.User = &fileProfile{
			ID:       snap.User.ID,
			Name:     snap.User.Name,
			Email:    snap.User.Email,
			RoleID:   snap.User.RoleID,
			ClientID: snap.User.ClientID,
			IsActive: snap.User.IsActive,
		}
	}
	raw, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing a missing session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
