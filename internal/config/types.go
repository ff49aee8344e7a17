package config

import (
	"time"

	"airport-data/pkg/database"
)

// ServerConfig contains lookup API server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout  time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" validate:"gte=0"`
	// TableSource selects where the server loads its lookup table from.
	TableSource string `yaml:"tableSource" validate:"oneof=embedded file database"`
	TablePath   string `yaml:"tablePath" validate:"required_if=TableSource file"`
}

// DatabaseConfig contains the optional Postgres snapshot store configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gte=0,lte=65535"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslMode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int           `yaml:"maxOpenConns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"maxIdleConns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// IngestConfig contains settings for the offline table generation run
type IngestConfig struct {
	BaseURL          string        `yaml:"baseURL" validate:"required,url"`
	AirportsFile     string        `yaml:"airportsFile" validate:"required"`
	RunwaysFile      string        `yaml:"runwaysFile" validate:"required"`
	CacheDir         string        `yaml:"cacheDir" validate:"required"`
	CacheMaxAge      time.Duration `yaml:"cacheMaxAge" validate:"gt=0"`
	HTTPTimeout      time.Duration `yaml:"httpTimeout" validate:"gt=0"`
	OutputPath       string        `yaml:"outputPath" validate:"required"`
	MaxArtifactBytes int           `yaml:"maxArtifactBytes" validate:"gt=0"`
	SourceName       string        `yaml:"sourceName" validate:"required"`
	PublishSnapshot  bool          `yaml:"publishSnapshot"`
}

// Config is the root configuration structure shared by all binaries
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// Postgres converts the section into the connection settings of pkg/database
func (d DatabaseConfig) Postgres() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}
