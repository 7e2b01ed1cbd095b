package theme

import (
	"path/filepath"
	"testing"

	"github.com/geekhirusha/chatapp/internal/store"
)

func testManager(t *testing.T) (*Manager, *store.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewManager(db), db
}

func TestMissingKeyMeansSystem(t *testing.T) {
	m, _ := testManager(t)
	if got := m.Preference(); got != System {
		t.Errorf("preference = %q, want system", got)
	}
}

func TestSetAndReadBack(t *testing.T) {
	m, _ := testManager(t)
	if err := m.SetPreference(Dark); err != nil {
		t.Fatal(err)
	}
	if got := m.Preference(); got != Dark {
		t.Errorf("preference = %q, want dark", got)
	}
}

func TestSystemRemovesKey(t *testing.T) {
	m, db := testManager(t)
	if err := m.SetPreference(Light); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPreference(System); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.GetPref("color_scheme"); ok {
		t.Error("system preference should remove the stored key")
	}
	if got := m.Preference(); got != System {
		t.Errorf("preference = %q, want system", got)
	}
}

func TestInvalidOptionRejected(t *testing.T) {
	m, _ := testManager(t)
	if err := m.SetPreference(Option("sepia")); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestUnrecognizedStoredValueMeansSystem(t *testing.T) {
	m, db := testManager(t)
	if err := db.SetPref("color_scheme", "solarized"); err != nil {
		t.Fatal(err)
	}
	if got := m.Preference(); got != System {
		t.Errorf("preference = %q, want system", got)
	}
}

func TestApplied(t *testing.T) {
	m, _ := testManager(t)
	if got := m.Applied(); got != Dark {
		t.Errorf("system should apply dark in a terminal, got %q", got)
	}
	if err := m.SetPreference(Light); err != nil {
		t.Fatal(err)
	}
	if got := m.Applied(); got != Light {
		t.Errorf("applied = %q, want light", got)
	}
}
