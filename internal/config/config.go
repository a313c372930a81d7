package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the persisted CLI configuration. Credentials live in a separate
// token cache file, not here.
type Config struct {
	Server     string `json:"server"`
	ChatflowID string `json:"chatflow_id"`
	LogLevel   string `json:"log_level"`
}

// Dir returns the flowchat config directory, honoring FLOWCHAT_CONFIG_DIR.
func Dir() string {
	if dir := os.Getenv("FLOWCHAT_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowchat"
	}
	return filepath.Join(home, ".flowchat")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

// TokenCachePath returns where the token cache is stored.
func TokenCachePath() string {
	return filepath.Join(Dir(), "tokens.json")
}

// Load reads configuration with defaults and env fallbacks; values from the
// file override them. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server:     envOr("FLOWCHAT_SERVER", "http://localhost:3000"),
		ChatflowID: os.Getenv("FLOWCHAT_CHATFLOW"),
		LogLevel:   envOr("FLOWCHAT_LOG_LEVEL", "info"),
	}

	if configPath == "" {
		configPath = DefaultPath()
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}
	return cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
