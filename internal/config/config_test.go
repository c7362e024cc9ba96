package config

import (
	"os"
	"path/filepath"
	"testing"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

func TestLoadFromPath(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantErr       bool
		wantOutput    string
		wantColor     string
		wantNoBrowser bool
		wantStore     string
	}{
		{
			name: "valid config",
			content: `output: yaml
color: always
no_browser: true
credential_store: keyring`,
			wantOutput:    "yaml",
			wantColor:     "always",
			wantNoBrowser: true,
			wantStore:     "keyring",
		},
		{
			name:    "empty config",
			content: "",
		},
		{
			name:    "invalid yaml",
			content: "invalid: [yaml",
			wantErr: true,
		},
		{
			name:    "unknown output",
			content: "output: table",
			wantErr: true,
		},
		{
			name:    "unknown credential store",
			content: "credential_store: vault",
			wantErr: true,
		},
		{
			name:       "partial config",
			content:    `output: text`,
			wantOutput: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			if tt.content != "" {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o600); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
			}

			s, err := LoadFromPath(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFromPath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if s.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", s.Output, tt.wantOutput)
			}
			if s.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", s.Color, tt.wantColor)
			}
			if s.NoBrowser != tt.wantNoBrowser {
				t.Errorf("NoBrowser = %v, want %v", s.NoBrowser, tt.wantNoBrowser)
			}
			if s.CredentialStore != tt.wantStore {
				t.Errorf("CredentialStore = %q, want %q", s.CredentialStore, tt.wantStore)
			}
		})
	}
}

func TestLoadFromPath_InvalidValueIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("color: sometimes"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromPath(path)
	if !clierrors.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestSettingsPath(t *testing.T) {
	orig := SetConfigPathFunc(func() (string, error) { return "/home/u/.config/tier/config.yaml", nil })
	defer SetConfigPathFunc(orig)

	p, err := SettingsPath(map[string]string{})
	if err != nil || p != "/home/u/.config/tier/config.yaml" {
		t.Errorf("SettingsPath() = %q, %v", p, err)
	}

	p, err = SettingsPath(map[string]string{EnvConfigPath: "/etc/tier.yaml"})
	if err != nil || p != "/etc/tier.yaml" {
		t.Errorf("SettingsPath(override) = %q, %v", p, err)
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	orig := SetConfigPathFunc(func() (string, error) {
		return filepath.Join(t.TempDir(), "absent.yaml"), nil
	})
	defer SetConfigPathFunc(orig)

	s, err := LoadSettings(nil)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if *s != (Settings{}) {
		t.Errorf("expected empty settings, got %+v", s)
	}
}
