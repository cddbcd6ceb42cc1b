package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/pkg/storage"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080

[database]
name = "lectern"
user = "lectern"
password = "lectern"

[storage]
provider = "badger"
path = "/var/lib/lectern/assets"
public_base_url = "http://localhost:8080/api/assets"

[api]
base_path = "/api"
max_upload_size = "50MB"

[api.pagination]
default_page_size = 6
max_page_size = 100

[auth]
username = "admin"
password = "admin"
secret = "0123456789abcdef0123456789abcdef"
token_ttl = "1h"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[auth]
token_ttl = "30m"
`

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadBase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Setenv(config.EnvLecternConfigDir, dir)
	t.Setenv(config.EnvLecternEnv, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Provider != storage.ProviderBadger {
		t.Errorf("storage.provider: got %s", cfg.Storage.Provider)
	}
	if cfg.API.MaxUploadSizeBytes() != 50*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 6 {
		t.Errorf("default page size: got %d, want 6", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Auth.TokenTTLDuration() != time.Hour {
		t.Errorf("token ttl: got %v", cfg.Auth.TokenTTLDuration())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %s, want info", cfg.LogLevel)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.prod.toml", overlayConfig)
	t.Setenv(config.EnvLecternConfigDir, dir)
	t.Setenv(config.EnvLecternEnv, "prod")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env() != "prod" {
		t.Errorf("env: got %s, want prod", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("database.host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "lectern" {
		t.Errorf("database.name should survive overlay, got %s", cfg.Database.Name)
	}
	if cfg.Auth.TokenTTLDuration() != 30*time.Minute {
		t.Errorf("token ttl: got %v, want 30m", cfg.Auth.TokenTTLDuration())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Setenv(config.EnvLecternConfigDir, dir)
	t.Setenv(config.EnvLecternEnv, "")
	t.Setenv("LECTERN_AUTH_PASSWORD", "from-env")
	t.Setenv("LECTERN_SERVER_PORT", "7070")
	t.Setenv("LECTERN_API_MAX_UPLOAD_SIZE", "10MB")
	t.Setenv("LECTERN_PAGINATION_DEFAULT_PAGE_SIZE", "12")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.Password != "from-env" {
		t.Errorf("auth.password: got %s", cfg.Auth.Password)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port: got %d", cfg.Server.Port)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 12 {
		t.Errorf("default page size: got %d", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "short secret",
			mutate:  func(s string) string { return strings.Replace(s, "0123456789abcdef0123456789abcdef", "short", 1) },
			wantErr: "auth",
		},
		{
			name:    "bad upload size",
			mutate:  func(s string) string { return strings.Replace(s, `"50MB"`, `"lots"`, 1) },
			wantErr: "max_upload_size",
		},
		{
			name: "bad shutdown timeout",
			mutate: func(s string) string {
				return strings.Replace(s, `shutdown_timeout = "30s"`, `shutdown_timeout = "soon"`, 1)
			},
			wantErr: "shutdown_timeout",
		},
		{
			name:    "badger without path",
			mutate:  func(s string) string { return strings.Replace(s, `path = "/var/lib/lectern/assets"`, "", 1) },
			wantErr: "storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.mutate(baseConfig))
			t.Setenv(config.EnvLecternConfigDir, dir)
			t.Setenv(config.EnvLecternEnv, "")

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, "[server\nport = ")
	t.Setenv(config.EnvLecternConfigDir, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestShippedConfigUploadCeiling(t *testing.T) {
	t.Setenv(config.EnvLecternConfigDir, filepath.Join("..", ".."))
	t.Setenv(config.EnvLecternEnv, "")
	t.Setenv("LECTERN_API_MAX_UPLOAD_SIZE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load shipped config.toml: %v", err)
	}

	if got, want := cfg.API.MaxUploadSizeBytes(), int64(50<<20); got != want {
		t.Errorf("max upload size = %d, want %d", got, want)
	}
}
