package app

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - FRESH_CONFIG_PATH: config file location (default: $XDG_CONFIG_HOME/fresh/fresh.toml)
//   - FRESH_HOME: base directory for fresh data (default: $XDG_STATE_HOME/fresh)
func GetDefaults() map[string]string {
	configPath := os.Getenv("FRESH_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(xdg.ConfigHome, "fresh", "fresh.toml")
	}

	baseDir := os.Getenv("FRESH_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(xdg.StateHome, "fresh")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}
}
