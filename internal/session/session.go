// Package session tracks the locally authenticated user. The id is
// persisted in the prefs store; its absence means unauthenticated, which
// gates every projection's first request and picks the initial screen.
package session

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/geekhirusha/chatapp/internal/store"
)

const (
	userIDKey      = "user_id"
	displayNameKey = "display_name"
)

// Reader is the capability handed to projections: who is signed in.
type Reader interface {
	UserID() (int, bool)
	DisplayName() string
}

// Manager persists and caches the session identity.
type Manager struct {
	mu   sync.RWMutex
	db   *store.DB
	id   int
	name string
	set  bool
}

var _ Reader = (*Manager)(nil)

// NewManager loads the persisted identity, if any.
func NewManager(db *store.DB) (*Manager, error) {
	m := &Manager{db: db}

	val, ok, err := db.GetPref(userIDKey)
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}
	if ok {
		id, err := strconv.Atoi(val)
		if err != nil {
			// Treat a corrupt id as signed out rather than failing startup.
			return m, nil
		}
		m.id = id
		m.set = true
	}
	name, _, err := db.GetPref(displayNameKey)
	if err != nil {
		return nil, fmt.Errorf("read display name: %w", err)
	}
	m.name = name
	return m, nil
}

// UserID returns the signed-in user id and whether one is set.
func (m *Manager) UserID() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id, m.set
}

// DisplayName returns the stored display name, empty if none.
func (m *Manager) DisplayName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// SignIn persists the identity. Called after sign-up or sign-in completes.
func (m *Manager) SignIn(id int, displayName string) error {
	if err := m.db.SetPref(userIDKey, strconv.Itoa(id)); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	if displayName != "" {
		if err := m.db.SetPref(displayNameKey, displayName); err != nil {
			return fmt.Errorf("save display name: %w", err)
		}
	}
	m.mu.Lock()
	m.id = id
	m.name = displayName
	m.set = true
	m.mu.Unlock()
	return nil
}

// SignOut clears the persisted identity.
func (m *Manager) SignOut() error {
	if err := m.db.DeletePref(userIDKey); err != nil {
		return fmt.Errorf("clear user id: %w", err)
	}
	if err := m.db.DeletePref(displayNameKey); err != nil {
		return fmt.Errorf("clear display name: %w", err)
	}
	m.mu.Lock()
	m.id = 0
	m.name = ""
	m.set = false
	m.mu.Unlock()
	return nil
}
