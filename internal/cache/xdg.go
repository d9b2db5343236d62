package cache

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "dashboard"

// homeEnv relocates every directory below a single root, mainly for tests
// and portable installs.
const homeEnv = "DASHBOARD_HOME"

// ConfigDir returns the configuration directory.
// $XDG_CONFIG_HOME/dashboard or ~/.config/dashboard on Unix,
// ~/Library/Application Support/dashboard on macOS.
func ConfigDir() (string, error) {
	return appDir("config", "XDG_CONFIG_HOME", []string{"Library", "Application Support"}, []string{".config"})
}

// DataDir returns the directory holding the database and stored uploads.
// $XDG_DATA_HOME/dashboard or ~/.local/share/dashboard on Unix.
func DataDir() (string, error) {
	return appDir("data", "XDG_DATA_HOME", []string{"Library", "Application Support"}, []string{".local", "share"})
}

// CacheDir returns the directory for OCR copies and cached OCR text.
// $XDG_CACHE_HOME/dashboard or ~/.cache/dashboard on Unix,
// ~/Library/Caches/dashboard on macOS.
func CacheDir() (string, error) {
	return appDir("cache", "XDG_CACHE_HOME", []string{"Library", "Caches"}, []string{".cache"})
}

func appDir(sub, xdgVar string, darwin, unix []string) (string, error) {
	if root := os.Getenv(homeEnv); root != "" {
		return filepath.Join(root, sub), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(append(append([]string{home}, darwin...), appName)...), nil
	}

	if base := os.Getenv(xdgVar); base != "" {
		return filepath.Join(base, appName), nil
	}

	return filepath.Join(append(append([]string{home}, unix...), appName)...), nil
}
