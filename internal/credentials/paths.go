package credentials

import (
	"os"
	"path/filepath"
	"runtime"
)

// cursorAppSupportDir returns the OS-specific Cursor application data directory.
func cursorAppSupportDir() string {
	return cursorAppSupportDirFor(runtime.GOOS, homeDir(), os.Getenv("APPDATA"))
}

func cursorAppSupportDirFor(goos, home, appData string) string {
	switch goos {
	case "darwin":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support", "Cursor")
	case "linux":
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".config", "Cursor")
	case "windows":
		if appData != "" {
			return filepath.Join(appData, "Cursor")
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, "AppData", "Roaming", "Cursor")
	}
	return ""
}

// DefaultStateDBPath is where Cursor keeps its global key-value store.
// It returns "" on unsupported platforms.
func DefaultStateDBPath() string {
	dir := cursorAppSupportDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "User", "globalStorage", "state.vscdb")
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
