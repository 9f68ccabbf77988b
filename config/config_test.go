package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadWithViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Store.DataFile != "data.json" {
		t.Errorf("expected default data file 'data.json', got %q", cfg.Store.DataFile)
	}
	if cfg.Store.VersionFile != "version.json" {
		t.Errorf("expected default version file 'version.json', got %q", cfg.Store.VersionFile)
	}
	if cfg.Store.UploadsDir != "uploads" {
		t.Errorf("expected default uploads dir 'uploads', got %q", cfg.Store.UploadsDir)
	}
	if cfg.Auth.TokenExpiry != "1h" {
		t.Errorf("expected default token expiry '1h', got %q", cfg.Auth.TokenExpiry)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*viper.Viper)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(v *viper.Viper) {}, wantErr: false},
		{name: "zero port invalid", mutate: func(v *viper.Viper) { v.Set("server.port", 0) }, wantErr: true},
		{name: "port too large", mutate: func(v *viper.Viper) { v.Set("server.port", 70000) }, wantErr: true},
		{name: "empty store path", mutate: func(v *viper.Viper) { v.Set("store.path", "") }, wantErr: true},
		{name: "empty data file", mutate: func(v *viper.Viper) { v.Set("store.data_file", "") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			tt.mutate(v)
			_, err := LoadWithViper(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadWithViper() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestBindSensitiveEnvVars(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$testhash")
	t.Setenv("JWT_SECRET", "supersecret")
	t.Setenv("GITHUB_TOKEN", "ghp_token")
	t.Setenv("REPO", "mariposa/trail-data")
	t.Setenv("PORT", "8080")

	v := viper.New()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Auth.AdminPasswordHash != "$2a$10$testhash" {
		t.Errorf("ADMIN_PASSWORD_HASH not bound, got %q", cfg.Auth.AdminPasswordHash)
	}
	if cfg.Auth.JWTSecret != "supersecret" {
		t.Errorf("JWT_SECRET not bound, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Store.Token != "ghp_token" {
		t.Errorf("GITHUB_TOKEN not bound, got %q", cfg.Store.Token)
	}
	if cfg.Store.Repo != "mariposa/trail-data" {
		t.Errorf("REPO not bound, got %q", cfg.Store.Repo)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("PORT not bound, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailhead.toml")
	content := []byte("[server]\nport = 6001\n\n[store]\npath = \"/var/lib/trailhead\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if cfg.Server.Port != 6001 {
		t.Errorf("expected port 6001, got %d", cfg.Server.Port)
	}
	if cfg.Store.Path != "/var/lib/trailhead" {
		t.Errorf("expected store path override, got %q", cfg.Store.Path)
	}
	// Unset values fall back to defaults
	if cfg.Store.Branch != "main" {
		t.Errorf("expected default branch 'main', got %q", cfg.Store.Branch)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
