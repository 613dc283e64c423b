// Package paths provides XDG-compliant path resolution for sheetsync.
//
// Resolution order:
// 1. SHEETSYNC_HOME (portable root) → $SHEETSYNC_HOME/{config,state,cache,run}
// 2. XDG env vars → $XDG_*_HOME/sheetsync
// 3. Platform defaults → ~/.config/sheetsync, ~/.local/state/sheetsync, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "sheetsync"

// HomeEnv names the portable root override.
const HomeEnv = "SHEETSYNC_HOME"

func base(homeSub, xdgEnv string, fallback ...string) string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, homeSub)
	}
	if dir := os.Getenv(xdgEnv); dir != "" {
		return filepath.Join(dir, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append(append([]string{homeDir}, fallback...), appName)...)
	}
	return ""
}

// ConfigDir returns the directory holding the global sheetsync.yml or sheetsync.toml.
func ConfigDir() string {
	return base("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the directory for logs and other runtime state.
func StateDir() string {
	return base("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the directory for regenerable data.
func CacheDir() string {
	return base("cache", "XDG_CACHE_HOME", ".cache")
}

// RuntimeDir returns the directory for sockets.
// Uses XDG_RUNTIME_DIR when available, falls back to StateDir.
func RuntimeDir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SocketPath returns the default path of the editor backend's unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "backend.sock")
}

// LogDir returns the directory for the optional log file sink.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// EnsureDirs creates all sheetsync directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), CacheDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
