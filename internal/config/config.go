package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPath is the CodeNomad preferences document shared with the CLI.
const DefaultPath = "~/.config/codenomad/config.json"

// EnvPath overrides the preferences document location when set.
const EnvPath = "CLI_CONFIG"

const (
	ModeLocal = "local"
	ModeAll   = "all"
)

// Path returns the resolved preferences file path, honoring the
// CLI_CONFIG override and expanding a leading "~/".
func Path() string {
	raw := strings.TrimSpace(os.Getenv(EnvPath))
	if raw == "" {
		raw = DefaultPath
	}
	return ExpandHome(raw)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
// The path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}

// ListeningMode reads preferences.listeningMode from the preferences
// document. Any read or parse failure, and any value other than
// "local" or "all", falls back to "local".
func ListeningMode() string {
	v := viper.New()
	v.SetConfigFile(Path())
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return ModeLocal
	}
	switch v.GetString("preferences.listeningMode") {
	case ModeAll:
		return ModeAll
	case ModeLocal:
		return ModeLocal
	default:
		return ModeLocal
	}
}

// ListeningHost maps the listening mode to the bind address handed to
// the CLI: loopback-only for "local", all interfaces otherwise.
func ListeningHost() string {
	if ListeningMode() == ModeAll {
		return "0.0.0.0"
	}
	return "127.0.0.1"
}
