// Package config holds configuration helpers shared by the CLI commands.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves ~ and $VAR references in user-supplied paths.
// Database, taxonomy, and report paths all accept either form.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
