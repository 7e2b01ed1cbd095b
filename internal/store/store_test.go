package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPrefRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.SetPref("user_id", "42"); err != nil {
		t.Fatal(err)
	}

	val, ok, err := db.GetPref("user_id")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || val != "42" {
		t.Errorf("got (%q, %v), want (42, true)", val, ok)
	}
}

func TestPrefMissingKey(t *testing.T) {
	db := testDB(t)

	val, ok, err := db.GetPref("color_scheme")
	if err != nil {
		t.Fatal(err)
	}
	if ok || val != "" {
		t.Errorf("got (%q, %v), want empty and absent", val, ok)
	}
}

func TestPrefOverwrite(t *testing.T) {
	db := testDB(t)

	if err := db.SetPref("color_scheme", "light"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetPref("color_scheme", "dark"); err != nil {
		t.Fatal(err)
	}

	val, ok, _ := db.GetPref("color_scheme")
	if !ok || val != "dark" {
		t.Errorf("got (%q, %v), want (dark, true)", val, ok)
	}
}

func TestPrefDelete(t *testing.T) {
	db := testDB(t)

	if err := db.SetPref("user_id", "7"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePref("user_id"); err != nil {
		t.Fatal(err)
	}
	_, ok, _ := db.GetPref("user_id")
	if ok {
		t.Error("key should be absent after delete")
	}

	// Deleting again is a no-op.
	if err := db.DeletePref("user_id"); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	first, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Changed {
		t.Error("first migration should apply changes")
	}

	second, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if second.Changed {
		t.Error("second migration should be a no-op")
	}
}
