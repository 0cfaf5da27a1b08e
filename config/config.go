// Package config loads the web frontend's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/nomis52/signup/logging"
	"github.com/nomis52/signup/server/cron"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr   = ":8080"
	defaultAPITimeout   = 10 * time.Second
	defaultHideAfter    = 5 * time.Second
	defaultIdleTimeout  = 30 * time.Minute
	defaultRateRequests = 30
	defaultRateWindow   = time.Minute
	defaultRateBurst    = 10
	defaultTitle        = "Activity Signup"

	minCSRFSecretLen = 16
	redacted         = "[REDACTED]"
)

// Config represents the complete server configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Listener  ListenerConfig  `yaml:"listener"`
	UI        UIConfig        `yaml:"ui"`
	Banner    BannerConfig    `yaml:"banner"`
	Session   SessionConfig   `yaml:"session"`
	CSRF      CSRFConfig      `yaml:"csrf"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   logging.Config  `yaml:"logging"`
}

// APIConfig points at the activities API.
type APIConfig struct {
	// BaseURL is the URL the /activities paths are resolved against
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ListenerConfig holds HTTP server listener settings.
type ListenerConfig struct {
	// The listen address, defaults to :8080
	Addr string `yaml:"addr"`
	// TLSCert and TLSKey enable HTTPS when both are set. The files are
	// reloaded when they change on disk.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// TLSEnabled reports whether a certificate is configured.
func (l ListenerConfig) TLSEnabled() bool {
	return l.TLSCert != "" && l.TLSKey != ""
}

// UIConfig holds page texts.
type UIConfig struct {
	Title  string `yaml:"title"`
	Footer string `yaml:"footer"`
}

// BannerConfig controls the message banner.
type BannerConfig struct {
	HideAfter time.Duration `yaml:"hide_after"`
}

// SessionConfig controls browser sessions.
type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// SecureCookies marks the session and CSRF cookies Secure. Enable it
	// when the site is served over HTTPS, directly or through a proxy.
	SecureCookies bool `yaml:"secure_cookies"`
}

// CSRFConfig holds the CSRF protection settings.
type CSRFConfig struct {
	// Secret seeds the token key. When empty a random key is generated at
	// startup and tokens do not survive a restart.
	Secret string `yaml:"secret"`
}

// RateLimitConfig limits form submissions per client address.
type RateLimitConfig struct {
	Disabled bool          `yaml:"disabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	Burst    int           `yaml:"burst"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	// RefreshSchedule is a cron expression for refreshing the activity
	// gauges in the background. Empty disables the background refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url must be http or https, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if (c.Listener.TLSCert == "") != (c.Listener.TLSKey == "") {
		return errors.New("listener tls_cert and tls_key must be set together")
	}
	if c.Banner.HideAfter <= 0 {
		return errors.New("banner hide_after must be positive")
	}
	if c.Session.IdleTimeout <= 0 {
		return errors.New("session idle_timeout must be positive")
	}
	if c.CSRF.Secret != "" && len(c.CSRF.Secret) < minCSRFSecretLen {
		return fmt.Errorf("csrf secret must be at least %d characters", minCSRFSecretLen)
	}
	if !c.RateLimit.Disabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 || c.RateLimit.Burst <= 0 {
			return errors.New("rate_limit requests, window and burst must be positive")
		}
	}
	if c.Metrics.RefreshSchedule != "" {
		if _, err := cron.ParseSchedule(c.Metrics.RefreshSchedule); err != nil {
			return fmt.Errorf("metrics refresh_schedule: %w", err)
		}
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Listener.Addr == "" {
		c.Listener.Addr = defaultListenAddr
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaultAPITimeout
	}
	if c.UI.Title == "" {
		c.UI.Title = defaultTitle
	}
	if c.Banner.HideAfter == 0 {
		c.Banner.HideAfter = defaultHideAfter
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = defaultIdleTimeout
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = defaultRateRequests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = defaultRateWindow
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = defaultRateBurst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Redacted returns a copy of the config with secrets replaced.
func (c *Config) Redacted() *Config {
	out := *c
	if out.CSRF.Secret != "" {
		out.CSRF.Secret = redacted
	}
	return &out
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}
