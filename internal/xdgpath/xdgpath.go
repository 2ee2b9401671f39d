package xdgpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "wmkit"

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() (string, error) {
	return homeFallback("XDG_CONFIG_HOME", ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() (string, error) {
	return homeFallback("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateHome returns $XDG_STATE_HOME or ~/.local/state.
func StateHome() (string, error) {
	return homeFallback("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// DataDirs returns $XDG_DATA_DIRS split on ':' or /usr/local/share:/usr/share.
func DataDirs() []string {
	raw := os.Getenv("XDG_DATA_DIRS")
	if strings.TrimSpace(raw) == "" {
		raw = "/usr/local/share:/usr/share"
	}
	var out []string
	for _, dir := range strings.Split(raw, ":") {
		if dir = strings.TrimSpace(dir); dir != "" {
			out = append(out, dir)
		}
	}
	return out
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// LogPath returns the default daemon log path.
func LogPath() (string, error) {
	dir, err := StateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, appName+".log"), nil
}

// IconDirs returns existing icon directories for theme, most specific first:
// the sized theme directory, then the theme root, for the user data home and
// each system data dir, and finally the pixmaps fallbacks.
func IconDirs(theme string, size int) []string {
	var bases []string
	if home, err := DataHome(); err == nil {
		bases = append(bases, home)
	}
	bases = append(bases, DataDirs()...)

	var candidates []string
	for _, base := range bases {
		root := filepath.Join(base, "icons")
		if theme != "" {
			if size > 0 {
				candidates = append(candidates, filepath.Join(root, theme, fmt.Sprintf("%dx%d", size, size)))
			}
			candidates = append(candidates, filepath.Join(root, theme))
		}
		candidates = append(candidates, filepath.Join(root, "hicolor"))
	}
	for _, base := range bases {
		candidates = append(candidates, filepath.Join(base, "pixmaps"))
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, dir := range candidates {
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}

func homeFallback(env string, rel string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, rel), nil
}
