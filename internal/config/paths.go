package config

import (
	"os"
	"path/filepath"
)

// appDirName matches the identifier the desktop app stores its data under.
const appDirName = "com.seedkit.canvas"

// DataDir resolves the app data directory. SEEDCANVAS_DATA overrides the
// platform default so tests and side-by-side installs can relocate everything.
func DataDir() string {
	if v := os.Getenv("SEEDCANVAS_DATA"); v != "" {
		return v
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName)
}

// SettingsPath returns the settings.json path inside dataDir.
func SettingsPath(dataDir string) string {
	return filepath.Join(dataDir, "settings.json")
}

// DatabasePath returns the SQLite database path inside dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "seedcanvas.db")
}

// ProjectsDir returns the per-project asset root inside dataDir.
func ProjectsDir(dataDir string) string {
	return filepath.Join(dataDir, "projects")
}

// SocketPath returns the Unix socket path the bridge listens on.
func SocketPath(dataDir string) string {
	return filepath.Join(dataDir, "mcp.sock")
}
