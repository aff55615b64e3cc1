package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Settings represents the user-level config.toml
type Settings struct {
	// GitHub access used by the fetcher
	GitHub GitHubSettings `toml:"github"`

	// Tools written into copm.json by init when no prompt is possible,
	// and used by install when the project has no copm.json
	DefaultTools []string `toml:"default_tools"`

	// Log level for diagnostics on stderr
	LogLevel string `toml:"log_level"`
}

// GitHubSettings holds repository host settings
type GitHubSettings struct {
	// API base URL for tarball downloads (for GitHub Enterprise)
	APIBaseURL string `toml:"api_base_url"`

	// Base URL for the git clone fallback
	CloneBaseURL string `toml:"clone_base_url"`

	// Token sent as a bearer credential; GITHUB_TOKEN fills it when empty
	Token string `toml:"token,omitempty"`

	// Transfer timeout in seconds
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		GitHub: GitHubSettings{
			APIBaseURL:     "https://api.github.com",
			CloneBaseURL:   "https://github.com",
			TimeoutSeconds: 60,
		},
		DefaultTools: []string{ToolCopilot},
		LogLevel:     "warn",
	}
}

// LoadSettings loads config.toml from the copm dir
func LoadSettings(copmDir string) (*Settings, error) {
	configPath := filepath.Join(copmDir, SettingsFile)

	cfg := DefaultSettings()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read %s", configPath)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", configPath)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if len(cfg.DefaultTools) == 0 {
		cfg.DefaultTools = []string{ToolCopilot}
	}

	return cfg, nil
}

// Save writes config.toml to disk
func (s *Settings) Save(copmDir string) error {
	if err := os.MkdirAll(copmDir, 0755); err != nil {
		return errors.Wrapf(err, "create %s", copmDir)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}

	return os.WriteFile(filepath.Join(copmDir, SettingsFile), data, 0644)
}

// Timeout returns the transfer timeout
func (s *Settings) Timeout() time.Duration {
	if s.GitHub.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.GitHub.TimeoutSeconds) * time.Second
}
