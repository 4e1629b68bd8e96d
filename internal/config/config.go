package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AuthProviderJWT    = "jwt"
	AuthProviderRemote = "remote"
)

var DefaultEnvConfig *EnvConfig

type EnvConfig struct {
	// server config
	APP_PORT         int           `yaml:"app_port"`
	GRAPHQL_PATH     string        `yaml:"graphql_path"`
	SHUTDOWN_TIMEOUT time.Duration `yaml:"shutdown_timeout"`
	// database config
	DB_HOST              string        `yaml:"db_host"`
	DB_PORT              int           `yaml:"db_port"`
	DB_USER              string        `yaml:"db_user"`
	DB_PASSWORD          string        `yaml:"db_password"`
	DB_NAME              string        `yaml:"db_name"`
	DB_SSL_MODE          string        `yaml:"db_ssl_mode"`
	DB_CONN_MAX_LIFETIME time.Duration `yaml:"db_conn_max_lifetime"`
	DB_MAX_IDLE_CONNS    int           `yaml:"db_max_idle_conns"`
	DB_MAX_OPEN_CONNS    int           `yaml:"db_max_open_conns"`
	// logger config
	LOG_FILE_PATH string `yaml:"log_file_path"`
	LOG_LEVEL     string `yaml:"log_level"`
	// auth config
	AUTH_PROVIDER     string        `yaml:"auth_provider"`
	AUTH_JWT_SECRET   string        `yaml:"auth_jwt_secret"`
	AUTH_JWT_AUDIENCE string        `yaml:"auth_jwt_audience"`
	AUTH_URL          string        `yaml:"auth_url"`
	AUTH_API_KEY      string        `yaml:"auth_api_key"`
	AUTH_TIMEOUT      time.Duration `yaml:"auth_timeout"`
	// api behaviour
	LEGACY_STATUS_CODES bool `yaml:"legacy_status_codes"`
	MAX_PAGE_LIMIT      int  `yaml:"max_page_limit"`
}

func defaults() *EnvConfig {
	return &EnvConfig{
		APP_PORT:             8080,
		GRAPHQL_PATH:         "/graphql",
		SHUTDOWN_TIMEOUT:     10 * time.Second,
		DB_HOST:              "localhost",
		DB_PORT:              5432,
		DB_USER:              "postgres",
		DB_PASSWORD:          "postgres",
		DB_NAME:              "postgres",
		DB_SSL_MODE:          "disable",
		DB_CONN_MAX_LIFETIME: 20 * time.Minute,
		DB_MAX_IDLE_CONNS:    10,
		DB_MAX_OPEN_CONNS:    100,
		LOG_LEVEL:            "info",
		AUTH_PROVIDER:        AuthProviderJWT,
		AUTH_JWT_AUDIENCE:    "authenticated",
		AUTH_TIMEOUT:         5 * time.Second,
		MAX_PAGE_LIMIT:       100,
	}
}

// LoadEnvConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE and the environment, in that order. A missing .env file is ignored.
func LoadEnvConfig() (*EnvConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.APP_PORT = getEnvInt("APP_PORT", cfg.APP_PORT)
	cfg.GRAPHQL_PATH = getEnvString("GRAPHQL_PATH", cfg.GRAPHQL_PATH)
	cfg.SHUTDOWN_TIMEOUT = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.SHUTDOWN_TIMEOUT)
	cfg.DB_HOST = getEnvString("DB_HOST", cfg.DB_HOST)
	cfg.DB_PORT = getEnvInt("DB_PORT", cfg.DB_PORT)
	cfg.DB_USER = getEnvString("DB_USER", cfg.DB_USER)
	cfg.DB_PASSWORD = getEnvString("DB_PASSWORD", cfg.DB_PASSWORD)
	cfg.DB_NAME = getEnvString("DB_NAME", cfg.DB_NAME)
	cfg.DB_SSL_MODE = getEnvString("DB_SSL_MODE", cfg.DB_SSL_MODE)
	cfg.DB_CONN_MAX_LIFETIME = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DB_CONN_MAX_LIFETIME)
	cfg.DB_MAX_IDLE_CONNS = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DB_MAX_IDLE_CONNS)
	cfg.DB_MAX_OPEN_CONNS = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DB_MAX_OPEN_CONNS)
	cfg.LOG_FILE_PATH = getEnvString("LOG_FILE_PATH", cfg.LOG_FILE_PATH)
	cfg.LOG_LEVEL = getEnvString("LOG_LEVEL", cfg.LOG_LEVEL)
	cfg.AUTH_PROVIDER = strings.ToLower(getEnvString("AUTH_PROVIDER", cfg.AUTH_PROVIDER))
	cfg.AUTH_JWT_SECRET = getEnvString("AUTH_JWT_SECRET", cfg.AUTH_JWT_SECRET)
	cfg.AUTH_JWT_AUDIENCE = getEnvString("AUTH_JWT_AUDIENCE", cfg.AUTH_JWT_AUDIENCE)
	cfg.AUTH_URL = strings.TrimRight(getEnvString("AUTH_URL", cfg.AUTH_URL), "/")
	cfg.AUTH_API_KEY = getEnvString("AUTH_API_KEY", cfg.AUTH_API_KEY)
	cfg.AUTH_TIMEOUT = getEnvDuration("AUTH_TIMEOUT", cfg.AUTH_TIMEOUT)
	cfg.LEGACY_STATUS_CODES = getEnvBool("LEGACY_STATUS_CODES", cfg.LEGACY_STATUS_CODES)
	cfg.MAX_PAGE_LIMIT = getEnvInt("MAX_PAGE_LIMIT", cfg.MAX_PAGE_LIMIT)

	DefaultEnvConfig = cfg
	return cfg, nil
}

// Validate rejects settings the API server cannot start with.
func (c *EnvConfig) Validate() error {
	switch c.AUTH_PROVIDER {
	case AuthProviderJWT:
		if c.AUTH_JWT_SECRET == "" {
			return errors.New("config: AUTH_JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case AuthProviderRemote:
		if c.AUTH_URL == "" {
			return errors.New("config: AUTH_URL is required when AUTH_PROVIDER=remote")
		}
	default:
		return fmt.Errorf("config: unknown AUTH_PROVIDER %q", c.AUTH_PROVIDER)
	}
	if c.MAX_PAGE_LIMIT <= 0 {
		return fmt.Errorf("config: MAX_PAGE_LIMIT must be positive, got %d", c.MAX_PAGE_LIMIT)
	}
	if c.APP_PORT <= 0 || c.APP_PORT > 65535 {
		return fmt.Errorf("config: APP_PORT out of range: %d", c.APP_PORT)
	}
	if !strings.HasPrefix(c.GRAPHQL_PATH, "/") {
		return fmt.Errorf("config: GRAPHQL_PATH must start with '/', got %q", c.GRAPHQL_PATH)
	}
	return nil
}

func loadYAML(path string, cfg *EnvConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
