// Package config locates and reads the meme configuration file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the configuration file inside Dir.
const FileName = "config.yaml"

// Dir returns the meme configuration directory.
//
// Resolution:
//   - $MEME_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/meme if set (respects XDG on any platform)
//   - %AppData%/meme on Windows
//   - ~/.config/meme on macOS and Linux
func Dir() string {
	if dir := os.Getenv("MEME_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "meme")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "meme")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "meme")
}

// DefaultPath returns the config file location, or "" when no directory
// can be resolved.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}
