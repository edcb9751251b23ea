package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DirName is the per-project and per-user data directory.
const DirName = ".logifyer"

var profileSanitize = regexp.MustCompile(`[^a-z0-9-]`)

// SanitizeProfile reduces a profile name to [a-z0-9-] for safe use in filenames.
func SanitizeProfile(profile string) string {
	lower := strings.ToLower(profile)
	sanitized := profileSanitize.ReplaceAllString(lower, "-")
	return strings.Trim(sanitized, "-")
}

// dbName returns the journal filename for a profile.
func dbName(profile string) string {
	p := SanitizeProfile(profile)
	if p == "" || p == "default" {
		return "journal.db"
	}
	return fmt.Sprintf("journal-%s.db", p)
}

// globalDBPath returns the path to the per-user journal, creating its directory.
func globalDBPath(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, dbName(profile)), nil
}

// FindDB walks up from the working directory looking for a .logifyer/ directory and
// falls back to ~/.logifyer/ when none is found before the home directory.
func FindDB(profile string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return globalDBPath(profile)
	}

	home, _ := os.UserHomeDir()
	dir := cwd

	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Join(candidate, dbName(profile)), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == home {
			break
		}
		dir = parent
	}

	return globalDBPath(profile)
}

// InitProject creates .logifyer/ in dir and returns the journal path inside it.
func InitProject(dir, profile string) (string, error) {
	target := filepath.Join(dir, DirName)
	if err := os.MkdirAll(target, 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	return filepath.Join(target, dbName(profile)), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "logifyer", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName, "config.toml"), nil
}
