package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.PingIntervalSeconds != 60 {
		t.Errorf("ping interval = %d, want 60", cfg.PingIntervalSeconds)
	}
	if cfg.AutoReconnect {
		t.Error("auto reconnect should default to off")
	}
	if cfg.BackendMount != "/ChatApp-Backend" {
		t.Errorf("backend mount = %q", cfg.BackendMount)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.ServerURL = "wss://chat.example.com/ws"
	cfg.PingIntervalSeconds = 30
	if err := Save(path, &cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ServerURL != "wss://chat.example.com/ws" {
		t.Errorf("server_url = %q", loaded.ServerURL)
	}
	if loaded.PingIntervalSeconds != 30 {
		t.Errorf("ping_interval_seconds = %d, want 30", loaded.PingIntervalSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.ServerURL = "ws://from-file/ws"
	if err := Save(path, &cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CHATAPP_SERVER_URL", "ws://from-env/ws")
	t.Setenv("CHATAPP_AUTO_RECONNECT", "true")

	resolved, err := Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ServerURL != "ws://from-env/ws" {
		t.Errorf("server_url = %q, want env value", resolved.ServerURL)
	}
	if !resolved.AutoReconnect {
		t.Error("auto_reconnect env override not applied")
	}
}

func TestResolveMissingFileUsesDefaults(t *testing.T) {
	os.Unsetenv("CHATAPP_SERVER_URL")
	resolved, err := Resolve(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ServerURL != Default().ServerURL {
		t.Errorf("server_url = %q, want default", resolved.ServerURL)
	}
}
