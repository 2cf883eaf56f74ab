package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvJWTIssuer    = "JWT_ISSUER"
	EnvJWTAudience  = "JWT_AUDIENCE"
	EnvPort         = "PORT"
	EnvServerMode   = "GIN_MODE"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogFile      = "LOG_FILE"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables. A .env file in the
// working directory, when present, is applied first without overriding variables
// that are already set.
func LoadFromEnv() (AppConfig, error) {
	if errEnv := godotenv.Load(); errEnv != nil && !errors.Is(errEnv, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", errEnv)
	}
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// readFile reads the YAML config file into out. A missing file is not an error.
func readFile(configPath string, out any) error {
	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		if errors.Is(errRead, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", errRead)
	}
	if errUnmarshal := yaml.Unmarshal(data, out); errUnmarshal != nil {
		return fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return nil
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// LoadDatabaseDSN reads the database DSN from the environment or the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	var cfg fileConfig
	if errRead := readFile(configPath, &cfg); errRead != nil {
		return "", errRead
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// ErrMissingJWTSecret indicates neither the environment nor the config file set a JWT secret.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set JWT_SECRET or `jwt.secret` in config file)")

// JWTConfig holds the shared token secret and claim expectations.
type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Expiry   time.Duration `yaml:"expiry"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 7 * 24 * time.Hour

// defaultJWTAudience matches the audience hosted auth providers put on user tokens.
const defaultJWTAudience = "authenticated"

// LoadJWTConfig loads JWT settings from the YAML config file and environment.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	var cfg fileConfig
	if errRead := readFile(configPath, &cfg); errRead != nil {
		return JWTConfig{}, errRead
	}
	result := cfg.JWT

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}
	if issuer := strings.TrimSpace(os.Getenv(EnvJWTIssuer)); issuer != "" {
		result.Issuer = issuer
	}
	if audience := strings.TrimSpace(os.Getenv(EnvJWTAudience)); audience != "" {
		result.Audience = audience
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(result.Audience) == "" {
		result.Audience = defaultJWTAudience
	}
	if strings.TrimSpace(result.Secret) == "" {
		return result, ErrMissingJWTSecret
	}
	return result, nil
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"`
	ReadTimeout  time.Duration `yaml:"read-timeout"`
	WriteTimeout time.Duration `yaml:"write-timeout"`
}

const (
	defaultPort         = 8080
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// LoadServerConfig loads listener settings. defaultPort applies when neither the
// environment nor the config file set a port.
func LoadServerConfig(configPath string, fallbackPort int) (ServerConfig, error) {
	type fileConfig struct {
		Server ServerConfig `yaml:"server"`
	}

	var cfg fileConfig
	if errRead := readFile(configPath, &cfg); errRead != nil {
		return ServerConfig{}, errRead
	}
	result := cfg.Server

	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		port, errParse := strconv.Atoi(portRaw)
		if errParse != nil {
			return ServerConfig{}, fmt.Errorf("invalid %s %q: %w", EnvPort, portRaw, errParse)
		}
		result.Port = port
	}
	if mode := strings.TrimSpace(os.Getenv(EnvServerMode)); mode != "" {
		result.Mode = mode
	}

	if result.Port == 0 {
		result.Port = fallbackPort
	}
	if result.Port == 0 {
		result.Port = defaultPort
	}
	if result.Port < 0 || result.Port > 65535 {
		return ServerConfig{}, fmt.Errorf("invalid port: %d", result.Port)
	}
	if result.ReadTimeout <= 0 {
		result.ReadTimeout = defaultReadTimeout
	}
	if result.WriteTimeout <= 0 {
		result.WriteTimeout = defaultWriteTimeout
	}
	return result, nil
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// LoadLogConfig loads logger settings from the YAML config file and environment.
func LoadLogConfig(configPath string) (LogConfig, error) {
	type fileConfig struct {
		Log LogConfig `yaml:"log"`
	}

	var cfg fileConfig
	if errRead := readFile(configPath, &cfg); errRead != nil {
		return LogConfig{}, errRead
	}
	result := cfg.Log

	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		result.Level = level
	}
	if format := strings.TrimSpace(os.Getenv(EnvLogFormat)); format != "" {
		result.Format = format
	}
	if file := strings.TrimSpace(os.Getenv(EnvLogFile)); file != "" {
		result.File = file
	}

	if result.Level == "" {
		result.Level = "info"
	}
	if result.Format == "" {
		result.Format = "text"
	}
	return result, nil
}
