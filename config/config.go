// Package config loads i8n settings from the environment.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// DefaultCacheTTL is how long translations stay cached when nothing
	// else is configured.
	DefaultCacheTTL = 3600 * time.Second

	// CacheTTLEnv holds the cache TTL in seconds.
	CacheTTLEnv = "PUMPWOOD__I8N__CACHE_TTL"

	// LegacyCacheExpiryEnv holds the cache TTL in hours (float). It takes
	// precedence over CacheTTLEnv when set.
	LegacyCacheExpiryEnv = "PUMPOOD__I8N__CACHE_EXPIRY"
)

// Backend names accepted by PUMPWOOD__I8N__BACKEND.
const (
	BackendNone   = "none"
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Config holds the environment configuration of a translator.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CacheTTLSeconds int           `envconfig:"PUMPWOOD__I8N__CACHE_TTL" default:"3600"`
	CacheExpiry     CacheExpiry   `envconfig:"PUMPOOD__I8N__CACHE_EXPIRY"`
	DefaultTag      string        `envconfig:"PUMPWOOD__I8N__DEFAULT_TAG" default:""`
	Timeout         time.Duration `envconfig:"PUMPWOOD__I8N__TIMEOUT" default:"10s"`
	Backend         string        `envconfig:"PUMPWOOD__I8N__BACKEND" default:""`

	MicroserviceURL string `envconfig:"PUMPWOOD__I8N__MICROSERVICE_URL" default:""`
	Username        string `envconfig:"PUMPWOOD__I8N__USERNAME" default:""`
	Password        string `envconfig:"PUMPWOOD__I8N__PASSWORD" default:""`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel  string `envconfig:"PUMPWOOD__I8N__OPENAI_MODEL" default:"gpt-4o-mini"`

	RedisURL string `envconfig:"PUMPWOOD__I8N__REDIS_URL" default:""`

	RetryMax          int `envconfig:"PUMPWOOD__I8N__RETRY_MAX" default:"2"`
	RequestsPerMinute int `envconfig:"PUMPWOOD__I8N__REQUESTS_PER_MINUTE" default:"0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and resolves the backend selection.
func (c *Config) Validate() error {
	if _, err := cacheTTL(c.CacheTTLSeconds, c.CacheExpiry); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("PUMPWOOD__I8N__TIMEOUT must be >= 0")
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("PUMPWOOD__I8N__RETRY_MAX must be >= 0")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("PUMPWOOD__I8N__REQUESTS_PER_MINUTE must be >= 0")
	}

	backend, err := c.resolveBackend()
	if err != nil {
		return err
	}
	c.Backend = backend

	switch c.Backend {
	case BackendRemote:
		if strings.TrimSpace(c.Username) == "" {
			return fmt.Errorf("PUMPWOOD__I8N__USERNAME is required for the remote backend")
		}
	case BackendLocal:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the local backend")
		}
	}
	return nil
}

// resolveBackend returns the explicit backend or infers it from the
// credentials present. Both sets of credentials without an explicit choice
// is a conflict.
func (c *Config) resolveBackend() (string, error) {
	hasRemote := strings.TrimSpace(c.MicroserviceURL) != ""
	hasLocal := strings.TrimSpace(c.OpenAIAPIKey) != ""

	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "":
		if hasRemote && hasLocal {
			return "", fmt.Errorf("both PUMPWOOD__I8N__MICROSERVICE_URL and OPENAI_API_KEY are set, choose one with PUMPWOOD__I8N__BACKEND")
		}
		if hasRemote {
			return BackendRemote, nil
		}
		if hasLocal {
			return BackendLocal, nil
		}
		return BackendNone, nil
	case BackendNone:
		return BackendNone, nil
	case BackendRemote, "microservice":
		if !hasRemote {
			return "", fmt.Errorf("PUMPWOOD__I8N__MICROSERVICE_URL is required for the remote backend")
		}
		return BackendRemote, nil
	case BackendLocal, "openai":
		return BackendLocal, nil
	default:
		return "", fmt.Errorf("unknown backend %q (supported: none, remote, local)", c.Backend)
	}
}

// CacheTTL returns the cache TTL as a duration. The legacy expiry in hours
// wins over the TTL in seconds.
func (c *Config) CacheTTL() time.Duration {
	ttl, _ := cacheTTL(c.CacheTTLSeconds, c.CacheExpiry)
	return ttl
}

// CacheExpiry is a cache TTL given in hours, possibly fractional. An empty
// value leaves it unset.
type CacheExpiry struct {
	TTL time.Duration
	Set bool
}

// Decode implements envconfig.Decoder.
func (e *CacheExpiry) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*e = CacheExpiry{}
		return nil
	}

	hours, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch {
	case math.IsNaN(hours) || math.IsInf(hours, 0):
		return fmt.Errorf("%s must be a finite number of hours", LegacyCacheExpiryEnv)
	case hours < 0:
		return fmt.Errorf("%s must be >= 0", LegacyCacheExpiryEnv)
	case hours*float64(time.Hour) >= float64(maxTTL):
		return fmt.Errorf("%s is too large", LegacyCacheExpiryEnv)
	}

	*e = CacheExpiry{TTL: time.Duration(hours * float64(time.Hour)), Set: true}
	return nil
}

const maxTTL = time.Duration(math.MaxInt64)

func cacheTTL(seconds int, expiry CacheExpiry) (time.Duration, error) {
	if expiry.Set {
		return expiry.TTL, nil
	}
	if seconds < 0 {
		return 0, fmt.Errorf("%s must be >= 0", CacheTTLEnv)
	}
	if int64(seconds) > int64(maxTTL/time.Second) {
		return 0, fmt.Errorf("%s is too large", CacheTTLEnv)
	}
	return time.Duration(seconds) * time.Second, nil
}

// cacheTTLEnv is the subset of Config that sets the cache TTL.
type cacheTTLEnv struct {
	Seconds int         `envconfig:"PUMPWOOD__I8N__CACHE_TTL" default:"3600"`
	Expiry  CacheExpiry `envconfig:"PUMPOOD__I8N__CACHE_EXPIRY"`
}

// CacheTTLFromEnv reads the cache TTL the same way Load does, without
// requiring the rest of the configuration to be valid.
func CacheTTLFromEnv() (time.Duration, error) {
	var env cacheTTLEnv
	if err := envconfig.Process("", &env); err != nil {
		return 0, err
	}
	return cacheTTL(env.Seconds, env.Expiry)
}
