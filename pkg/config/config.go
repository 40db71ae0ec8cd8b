// Package config loads the panel's client configuration from environment
// variables and command-line flags. Flags win over the environment.
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvBaseURL     = "SWITCHBOARD_BASE_URL"
	EnvPushPath    = "SWITCHBOARD_PUSH_PATH"
	EnvPushEnabled = "SWITCHBOARD_PUSH_ENABLED"
	EnvHTTPTimeout = "SWITCHBOARD_HTTP_TIMEOUT"
	EnvLogLevel    = "SWITCHBOARD_LOG_LEVEL"

	// DefaultBaseURL is the backend host on the local network.
	DefaultBaseURL  = "http://192.168.0.100:5000"
	DefaultPushPath = "/ws"
)

// Config holds the client configuration.
type Config struct {
	BaseURL     string
	PushPath    string
	PushEnabled bool
	HTTPTimeout time.Duration // Zero means rely on transport defaults
	LogLevel    string
}

// Default returns the configuration with every value at its default,
// overridden by any environment variables that are set.
func Default() Config {
	return Config{
		BaseURL:     envOrDefault(EnvBaseURL, DefaultBaseURL),
		PushPath:    envOrDefault(EnvPushPath, DefaultPushPath),
		PushEnabled: boolEnvOrDefault(EnvPushEnabled, true),
		HTTPTimeout: durationEnvOrDefault(EnvHTTPTimeout, 0),
		LogLevel:    envOrDefault(EnvLogLevel, "info"),
	}
}

// RegisterFlags binds flags to cfg, using its current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.BaseURL, "base", c.BaseURL, "Backend base URL")
	fs.StringVar(&c.PushPath, "push-path", c.PushPath, "Push channel path on the backend host")
	fs.BoolVar(&c.PushEnabled, "push", c.PushEnabled, "Connect the push channel for live updates")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", c.HTTPTimeout, "Per-request HTTP timeout, also bounds the push handshake (0 = none)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
}

// Load reads the environment, then parses args against fs, then validates.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base url %q: missing host", c.BaseURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid http timeout: must be >= 0")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func boolEnvOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func durationEnvOrDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
