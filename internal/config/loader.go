package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names an explicit configuration file. When set, the file must exist.
const EnvConfigPath = "AIRPORT_CONFIG"

// DefaultPaths are searched in order when EnvConfigPath is not set.
var DefaultPaths = []string{"config.yml", "./configs/config.yml"}

// Default returns the built-in configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			TableSource:  "embedded",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Database:        "airports",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		Ingest: IngestConfig{
			BaseURL:          "https://davidmegginson.github.io/ourairports-data/",
			AirportsFile:     "airports.csv",
			RunwaysFile:      "runways.csv",
			CacheDir:         ".cache/ourairports",
			CacheMaxAge:      24 * time.Hour,
			HTTPTimeout:      2 * time.Minute,
			OutputPath:       "internal/airportdata/airports.json",
			MaxArtifactBytes: 500 * 1024,
			SourceName:       "OurAirports",
		},
	}
}

// LoadConfig loads configuration from AIRPORT_CONFIG or the first readable
// default path, falling back to defaults when no file exists.
func LoadConfig() (*Config, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return LoadConfigFile(p)
	}
	for _, p := range DefaultPaths {
		cfg, err := LoadConfigFile(p)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	cfg := Default()
	applyEnv(cfg)
	return cfg, nil
}

// LoadConfigFile reads a single YAML file over the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnv lets deployments override secrets and endpoints without editing the file.
func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Database, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Ingest.BaseURL, "AIRPORT_DATA_BASE_URL")
	setString(&cfg.Ingest.CacheDir, "AIRPORT_CACHE_DIR")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
