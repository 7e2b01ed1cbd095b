// Package theme persists the user's color-scheme preference. The wire
// and storage contract is a single string pref: "light" or "dark" when
// the user picked one, and no key at all for "system".
package theme

import (
	"fmt"

	"github.com/geekhirusha/chatapp/internal/store"
)

const prefKey = "color_scheme"

// Option is the stored preference.
type Option string

const (
	Light  Option = "light"
	Dark   Option = "dark"
	System Option = "system"
)

// Valid reports whether o is a recognized preference.
func (o Option) Valid() bool {
	return o == Light || o == Dark || o == System
}

// Manager reads and writes the theme preference.
type Manager struct {
	db *store.DB
}

// NewManager creates a theme manager over the prefs store.
func NewManager(db *store.DB) *Manager {
	return &Manager{db: db}
}

// Preference returns the stored option. A missing or unrecognized key
// means System.
func (m *Manager) Preference() Option {
	val, ok, err := m.db.GetPref(prefKey)
	if err != nil || !ok {
		return System
	}
	o := Option(val)
	if o != Light && o != Dark {
		return System
	}
	return o
}

// SetPreference stores the option. System removes the key so a later
// OS-level default change takes effect without a stale override.
func (m *Manager) SetPreference(o Option) error {
	if !o.Valid() {
		return fmt.Errorf("invalid theme option %q", o)
	}
	if o == System {
		return m.db.DeletePref(prefKey)
	}
	return m.db.SetPref(prefKey, string(o))
}

// Applied resolves the preference to a concrete scheme. Terminals have
// no color-scheme signal, so System resolves to Dark.
func (m *Manager) Applied() Option {
	if p := m.Preference(); p == Light {
		return Light
	}
	return Dark
}
