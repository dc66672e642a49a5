package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"studio": {
			"base_url": "https://studio.example.com",
			"email": "doctor@example.com",
			"password": "hunter2"
		},
		"notify": {"notice_list": ["telegram:12345", "console:main"]},
		"api": {"enabled": true, "port": "9090"},
		"debug": true
	}`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Studio.BaseURL != "https://studio.example.com" {
		t.Errorf("BaseURL = %q", cfg.Studio.BaseURL)
	}
	if len(cfg.Notify.NoticeList) != 2 {
		t.Errorf("NoticeList = %v", cfg.Notify.NoticeList)
	}
	if cfg.API.Port != "9090" {
		t.Errorf("Port = %q", cfg.API.Port)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"studio": {
			"base_url": "https://studio.example.com",
			"email": "doctor@example.com",
			"password": "hunter2"
		}
	}`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Studio.TokenFile != filepath.Join("config", "token.txt") {
		t.Errorf("TokenFile = %q, want default", cfg.Studio.TokenFile)
	}
	if cfg.API.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.API.Port)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GOSTUDIO_EMAIL", "env@example.com")
	t.Setenv("GOSTUDIO_PASSWORD", "env-secret")

	path := writeConfig(t, `{
		"studio": {"base_url": "https://studio.example.com"}
	}`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Studio.Email != "env@example.com" {
		t.Errorf("Email = %q, want the env override", cfg.Studio.Email)
	}
	if cfg.Studio.Password != "env-secret" {
		t.Errorf("Password = %q, want the env override", cfg.Studio.Password)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "missing base_url",
			contents: `{"studio": {"email": "a@b.c", "password": "x"}}`,
		},
		{
			name:     "missing credentials",
			contents: `{"studio": {"base_url": "https://studio.example.com"}}`,
		},
		{
			name:     "malformed json",
			contents: `{"studio":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Keep credential env overrides out of validation tests
			t.Setenv("GOSTUDIO_EMAIL", "")
			t.Setenv("GOSTUDIO_PASSWORD", "")

			path := writeConfig(t, tt.contents)
			if _, err := loadConfig(path); err == nil {
				t.Fatal("loadConfig() accepted invalid config")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("loadConfig() accepted a missing file")
	}
}
