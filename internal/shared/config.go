package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden from the environment (see [ApplyEnv]).
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
	Import   ImportConfig   `toml:"import"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"FOUNDERS_DB_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"FOUNDERS_DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"FOUNDERS_DB_MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host" env:"FOUNDERS_HOST"`
	Port           int      `toml:"port" env:"FOUNDERS_PORT"`
	AllowedOrigins []string `toml:"allowed_origins" env:"FOUNDERS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      float64  `toml:"rate_limit" env:"FOUNDERS_RATE_LIMIT"`
	RateBurst      int      `toml:"rate_burst" env:"FOUNDERS_RATE_BURST"`
	MaxUploadMB    int64    `toml:"max_upload_mb" env:"FOUNDERS_MAX_UPLOAD_MB"`
}

// AuthConfig points at the identity provider and lists the directory administrators.
type AuthConfig struct {
	UserInfoURL string   `toml:"userinfo_url" env:"FOUNDERS_AUTH_USERINFO_URL"`
	Audience    string   `toml:"audience" env:"FOUNDERS_AUTH_AUDIENCE"`
	AdminEmails []string `toml:"admin_emails" env:"FOUNDERS_ADMIN_EMAILS" envSeparator:","`
}

// StorageConfig selects the blob backend used for profile images and archived imports.
type StorageConfig struct {
	Driver    string `toml:"driver" env:"FOUNDERS_STORAGE_DRIVER"`
	Dir       string `toml:"dir" env:"FOUNDERS_STORAGE_DIR"`
	PublicURL string `toml:"public_url" env:"FOUNDERS_STORAGE_PUBLIC_URL"`
	Bucket    string `toml:"bucket" env:"FOUNDERS_S3_BUCKET"`
	Region    string `toml:"region" env:"FOUNDERS_S3_REGION"`
	Endpoint  string `toml:"endpoint" env:"FOUNDERS_S3_ENDPOINT"`
	AccessKey string `toml:"access_key" env:"FOUNDERS_S3_ACCESS_KEY"`
	SecretKey string `toml:"secret_key" env:"FOUNDERS_S3_SECRET_KEY"`
	PathStyle bool   `toml:"path_style" env:"FOUNDERS_S3_PATH_STYLE"`
}

// ImportConfig holds defaults for CSV imports.
type ImportConfig struct {
	// DedupeMode is "update" or "skip".
	DedupeMode string `toml:"dedupe_mode" env:"FOUNDERS_IMPORT_DEDUPE_MODE"`
	Archive    bool   `toml:"archive" env:"FOUNDERS_IMPORT_ARCHIVE"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"FOUNDERS_LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, config.Validate()
}

// ResolveConfig loads path when it exists and falls back to defaults otherwise,
// then applies .env files and environment overrides.
func ResolveConfig(path string, envFiles ...string) (*Config, error) {
	var (
		config *Config
		err    error
	)

	if _, statErr := os.Stat(path); statErr == nil {
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		config = DefaultConfig()
	}

	if err := ApplyEnv(config, envFiles...); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// ApplyEnv loads any of envFiles that exist into the process environment and
// overlays FOUNDERS_* variables onto config.
func ApplyEnv(config *Config, envFiles ...string) error {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("%w: failed to load env files: %v", ErrInvalidConfig, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Import.DedupeMode {
	case "", "update", "skip":
	default:
		errs = append(errs, fmt.Errorf("%w: import.dedupe_mode must be update or skip, got %q", ErrInvalidConfig, c.Import.DedupeMode))
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "", "fs", "s3":
	default:
		errs = append(errs, fmt.Errorf("%w: storage.driver must be fs or s3, got %q", ErrInvalidConfig, c.Storage.Driver))
	}
	if strings.EqualFold(c.Storage.Driver, "s3") && c.Storage.Bucket == "" {
		errs = append(errs, fmt.Errorf("%w: storage.bucket is required for the s3 driver", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
