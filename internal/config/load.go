package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the editor cannot run with.
func (c *Config) Validate() error {
	if c.Editor.SelectRange <= 0 {
		return fmt.Errorf("editor.select_range must be positive, got %v", c.Editor.SelectRange)
	}
	if c.Playback.FrameStep <= 0 {
		return fmt.Errorf("playback.frame_step must be positive, got %v", c.Playback.FrameStep)
	}
	switch c.Backend.Kind {
	case "local":
	case "websocket":
		if c.Backend.URL == "" {
			return fmt.Errorf("backend.url is required for the websocket backend")
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./loa.yaml",
		"./loa.toml",
		filepath.Join(ConfigDir(), "config.yaml"),
		filepath.Join(ConfigDir(), "config.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "LoaEditor")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "LoaEditor")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "loa-editor")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "loa-editor")
	}
}

// loadFromFile merges a YAML or TOML file into cfg. The format is chosen
// by extension; anything that is not .toml is read as YAML.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
