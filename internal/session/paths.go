package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.chatapp.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chatapp")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DBPath returns the local prefs database path.
func DBPath() string {
	return filepath.Join(BaseDir(), "chatapp.db")
}

// LockPath returns the single-instance lock file path.
func LockPath() string {
	return filepath.Join(BaseDir(), "LOCK")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the client log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "chatapp.log")
}

// EnsureDir creates the config directory tree with proper permissions.
func EnsureDir() error {
	dirs := []string{
		BaseDir(),
		LogDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
