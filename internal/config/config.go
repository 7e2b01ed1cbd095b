package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for environment overrides (CHATAPP_SERVER_URL, ...).
const envPrefix = "chatapp"

// Config represents ~/.chatapp/config.toml. Environment variables with
// the CHATAPP_ prefix override file values.
type Config struct {
	// ServerURL is the websocket endpoint of the chat backend.
	ServerURL string `toml:"server_url" envconfig:"SERVER_URL"`
	// APIBaseURL is the HTTP base used for the image side-channel.
	APIBaseURL string `toml:"api_base_url" envconfig:"API_BASE_URL"`
	// BackendMount is the fixed mount path of the backend webapp.
	BackendMount string `toml:"backend_mount" envconfig:"BACKEND_MOUNT"`

	// PingIntervalSeconds controls the keep-alive heartbeat while the
	// socket is open. The backend does not answer pings; they only stop
	// intermediaries from closing the idle connection.
	PingIntervalSeconds int `toml:"ping_interval_seconds" envconfig:"PING_INTERVAL_SECONDS"`

	// AutoReconnect enables automatic redial with backoff after the
	// socket drops. Off by default: a screen re-requesting data drives
	// the reconnect instead.
	AutoReconnect       bool `toml:"auto_reconnect" envconfig:"AUTO_RECONNECT"`
	ReconnectInitialMs  int  `toml:"reconnect_initial_ms" envconfig:"RECONNECT_INITIAL_MS"`
	ReconnectMaxMs      int  `toml:"reconnect_max_ms" envconfig:"RECONNECT_MAX_MS"`
	ReconnectMaxRetries int  `toml:"reconnect_max_retries" envconfig:"RECONNECT_MAX_RETRIES"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:           "ws://localhost:8080/ChatApp-Backend/chat",
		APIBaseURL:          "http://localhost:8080",
		BackendMount:        "/ChatApp-Backend",
		PingIntervalSeconds: 60,
		AutoReconnect:       false,
		ReconnectInitialMs:  500,
		ReconnectMaxMs:      30000,
		ReconnectMaxRetries: 10,
	}
}

// PingInterval returns the heartbeat interval as a duration.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

// ReconnectInitial returns the first redial backoff as a duration.
func (c *Config) ReconnectInitial() time.Duration {
	return time.Duration(c.ReconnectInitialMs) * time.Millisecond
}

// ReconnectMax returns the redial backoff cap as a duration.
func (c *Config) ReconnectMax() time.Duration {
	return time.Duration(c.ReconnectMaxMs) * time.Millisecond
}

// Load reads config from the given path over the defaults. Returns an
// error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// ApplyEnv loads an optional .env file and overlays CHATAPP_* variables
// onto cfg.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	return nil
}

// Resolve builds the effective config: defaults, then the file at path
// if present, then environment overrides.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		cfg = *loaded
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
