package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration should validate: %v", err)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	yml := []byte(`
server:
  port: 9090
  tableSource: file
  tablePath: /srv/airports.json
logging:
  level: debug
ingest:
  cacheMaxAge: 6h
  maxArtifactBytes: 1024
`)

	cfg, err := Parse(yml)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.TablePath != "/srv/airports.json" {
		t.Errorf("Server.TablePath = %q", cfg.Server.TablePath)
	}
	if cfg.Ingest.CacheMaxAge != 6*time.Hour {
		t.Errorf("Ingest.CacheMaxAge = %v, want 6h", cfg.Ingest.CacheMaxAge)
	}
	if cfg.Ingest.MaxArtifactBytes != 1024 {
		t.Errorf("Ingest.MaxArtifactBytes = %d, want 1024", cfg.Ingest.MaxArtifactBytes)
	}
	// untouched sections keep their defaults
	if cfg.Ingest.AirportsFile != "airports.csv" {
		t.Errorf("Ingest.AirportsFile = %q, want default", cfg.Ingest.AirportsFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("invalid: yaml: content: [[[")); err == nil {
		t.Error("Parse() should fail on invalid YAML")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown table source", func(c *Config) { c.Server.TableSource = "s3" }},
		{"file source without path", func(c *Config) { c.Server.TableSource = "file"; c.Server.TablePath = "" }},
		{"bad base url", func(c *Config) { c.Ingest.BaseURL = "not a url" }},
		{"zero budget", func(c *Config) { c.Ingest.MaxArtifactBytes = 0 }},
		{"zero cache age", func(c *Config) { c.Ingest.CacheMaxAge = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yml"))
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should fail when AIRPORT_CONFIG points to a missing file")
	}
}

func TestLoadConfig_NoFileUsesDefaultsAndEnv(t *testing.T) {
	origDir, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(origDir) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PORT", "8181")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want env override", cfg.Database.Host)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
}

func TestDatabaseConfig_Postgres(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "secret"

	pg := cfg.Database.Postgres()
	if pg.Host != "localhost" || pg.Port != 5432 || pg.Database != "airports" || pg.Password != "secret" {
		t.Errorf("Postgres() = %+v", pg)
	}
	if pg.MaxOpenConns != cfg.Database.MaxOpenConns || pg.ConnMaxLifetime != cfg.Database.ConnMaxLifetime {
		t.Errorf("pool settings not carried over: %+v", pg)
	}
}
