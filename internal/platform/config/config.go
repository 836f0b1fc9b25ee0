package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Token store backends selectable through TokenStore.
const (
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

const (
	defaultAPIURL   = "http://127.0.0.1:8000"
	defaultPageSize = 10
)

// Admin captures the admin console configuration.
type Admin struct {
	APIURL      string        `yaml:"api_url"`
	PageSize    int           `yaml:"page_size"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	TokenStore  string        `yaml:"token_store"`
	TokenFile   string        `yaml:"token_file"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
	LogLevel    string        `yaml:"log_level"`
}

// DevBackend captures the development backend configuration.
type DevBackend struct {
	Addr        string
	SigningKey  string
	IdentityKey string
	TokenTTL    time.Duration
	Environment string
}

// DefaultDir returns the per-user configuration directory for lockme.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".lockme"
	}
	return filepath.Join(dir, "lockme")
}

// DefaultAdmin returns the built-in admin defaults.
func DefaultAdmin() Admin {
	return Admin{
		APIURL:     defaultAPIURL,
		PageSize:   defaultPageSize,
		TokenStore: TokenStoreFile,
		TokenFile:  filepath.Join(DefaultDir(), "admin-token.json"),
		LogLevel:   "warn",
	}
}

// Load builds the admin config: defaults, then the YAML file at path (if it
// exists), then environment overrides.
func Load(path string) (Admin, error) {
	cfg := DefaultAdmin()
	if path == "" {
		path = filepath.Join(DefaultDir(), "admin.yaml")
	}
	if err := cfg.overlayFile(path); err != nil {
		return Admin{}, err
	}
	cfg.overlayEnv()
	if err := cfg.Validate(); err != nil {
		return Admin{}, err
	}
	return cfg, nil
}

// FromEnv builds an admin config from defaults and environment variables only.
func FromEnv() Admin {
	cfg := DefaultAdmin()
	cfg.overlayEnv()
	return cfg
}

func (c *Admin) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Admin) overlayEnv() {
	if v := os.Getenv("LOCKME_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("LOCKME_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	if v := os.Getenv("LOCKME_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("LOCKME_TOKEN_STORE"); v != "" {
		c.TokenStore = v
	}
	if v := os.Getenv("LOCKME_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv("LOCKME_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("LOCKME_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects configurations the console cannot run with.
func (c Admin) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http_timeout cannot be negative")
	}
	switch c.TokenStore {
	case TokenStoreFile:
		if c.TokenFile == "" {
			return errors.New("token_file is required for the file token store")
		}
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisURL == "" {
			return errors.New("redis_url is required for the redis token store")
		}
	default:
		return fmt.Errorf("unknown token_store %q", c.TokenStore)
	}
	return nil
}

// DevBackendFromEnv builds the development backend config from environment
// variables so main stays lean.
func DevBackendFromEnv() DevBackend {
	addr := os.Getenv("LOCKME_DEV_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	signingKey := os.Getenv("LOCKME_DEV_SIGNING_KEY")
	if signingKey == "" {
		signingKey = DevSigningKey
	}
	identityKey := os.Getenv("LOCKME_DEV_IDENTITY_KEY")
	if identityKey == "" {
		identityKey = DevIdentityKey
	}
	ttl := 15 * time.Minute
	if v := os.Getenv("LOCKME_DEV_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}
	env := os.Getenv("LOCKME_ENV")
	if env == "" {
		env = "dev"
	}
	return DevBackend{
		Addr:        addr,
		SigningKey:  signingKey,
		IdentityKey: identityKey,
		TokenTTL:    ttl,
		Environment: env,
	}
}

// Development keys. They only make sense against the dev backend.
const (
	DevSigningKey  = "lockme-dev-signing-key-change-me"
	DevIdentityKey = "lockme-dev-identity-key-change-me"
)
