// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "keyladder"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultCorpusDir returns the directory scanned for user corpora (*.yaml, *.lua, *.txt).
func DefaultCorpusDir() string {
	return filepath.Join(XDGConfigHome(), appDir, "corpus")
}

// DefaultStagesPath returns the optional stage catalog override.
func DefaultStagesPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "stages.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "keyladder.db")
}

// DefaultLogPath returns the log file used while a full-screen program owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appDir, "keyladder.log")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}
