package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RateLimit.RegisterPerMinute != 5 || cfg.RateLimit.LoginPerMinute != 10 {
		t.Fatalf("unexpected rate limits: %+v", cfg.RateLimit)
	}
	if cfg.LLM.MaxContextMessage != 20 {
		t.Fatalf("expected context window 20, got %d", cfg.LLM.MaxContextMessage)
	}
	if cfg.Upload.MaxFileSize != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.Upload.MaxFileSize)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9000

[database]
driver = "sqlite"
dsn = "file.db"

[upload]
max_file_size = 2048
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BACKEND_PORT", "9100")
	t.Setenv("ALLOWED_FILE_TYPES", "text/plain, application/pdf ,")
	t.Setenv("ALGORITHM", "hs512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.App.Port != 9100 {
		t.Fatalf("env should override file port, got %d", cfg.App.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "file.db" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Upload.MaxFileSize != 2048 {
		t.Fatalf("expected file max size 2048, got %d", cfg.Upload.MaxFileSize)
	}
	if len(cfg.Upload.AllowedTypes) != 2 || cfg.Upload.AllowedTypes[1] != "application/pdf" {
		t.Fatalf("unexpected allowed types: %v", cfg.Upload.AllowedTypes)
	}
	if cfg.Auth.JWTAlgorithm != "HS512" {
		t.Fatalf("expected upper-cased algorithm, got %q", cfg.Auth.JWTAlgorithm)
	}
	if cfg.HTTPAddr() != "0.0.0.0:9100" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.Database.Driver = "oracle" },
		"algorithm": func(c *Config) { c.Auth.JWTAlgorithm = "RS256" },
		"secret":    func(c *Config) { c.Auth.JWTSecret = " " },
		"storage":   func(c *Config) { c.Storage.Driver = "gcs" },
		"upload":    func(c *Config) { c.Upload.MaxFileSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
