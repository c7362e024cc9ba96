package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

// EnvConfigPath overrides the settings file location.
const EnvConfigPath = EnvPrefix + "CONFIG"

// Settings holds presentation preferences read from the settings file.
// Nothing in it affects which API or credential a command uses.
type Settings struct {
	// Default output format (json, yaml, text)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	// Never try to open a browser during login
	NoBrowser bool `yaml:"no_browser,omitempty"`

	// Credential backend: file or keyring
	CredentialStore string `yaml:"credential_store,omitempty"`
}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns ~/.config/tier/config.yaml
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tier", "config.yaml"), nil
}

// SettingsPath returns the settings file path, honoring TIER_CONFIG.
func SettingsPath(env map[string]string) (string, error) {
	if p := strings.TrimSpace(env[EnvConfigPath]); p != "" {
		return p, nil
	}
	return configPathFunc()
}

// LoadSettings loads the settings file, returning empty settings when it
// does not exist or no home directory is known.
func LoadSettings(env map[string]string) (*Settings, error) {
	path, err := SettingsPath(env)
	if err != nil {
		return &Settings{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads settings from a specific path
func LoadFromPath(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Settings{}, nil // Return empty settings if file doesn't exist
	}
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects unknown enum values.
func (s *Settings) Validate() error {
	switch s.Output {
	case "", "json", "yaml", "text":
	default:
		return &clierrors.ConfigError{Field: "output", Value: s.Output, Message: "expected json, yaml or text"}
	}
	switch s.Color {
	case "", "auto", "always", "never":
	default:
		return &clierrors.ConfigError{Field: "color", Value: s.Color, Message: "expected auto, always or never"}
	}
	switch s.CredentialStore {
	case "", "file", "keyring":
	default:
		return &clierrors.ConfigError{Field: "credential_store", Value: s.CredentialStore, Message: "expected file or keyring"}
	}
	return nil
}
