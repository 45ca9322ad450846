package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rahul4469/toplane-guide/internal/models"
)

// ConfigFileEnv names an optional YAML file layered between defaults and env.
const ConfigFileEnv = "TOPLANE_CONFIG"

type Config struct {
	// Server config
	Server ServerConfig `koanf:"server"`

	// Analysis service config
	Upstream UpstreamConfig `koanf:"upstream"`

	// CSRF and visitor cookie config
	Security SecurityConfig `koanf:"security"`

	// guide page behaviour
	Display DisplayConfig `koanf:"display"`

	LogLevel       string `koanf:"log_level"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `koanf:"address"`
	Environment  string        `koanf:"environment"` // development, staging, production
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// UpstreamConfig holds the analysis service settings.
type UpstreamConfig struct {
	BaseURL        string        `koanf:"base_url"`
	AnalyzeTimeout time.Duration `koanf:"analyze_timeout"`
	HealthTimeout  time.Duration `koanf:"health_timeout"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	CSRFSecret        string `koanf:"csrf_secret"`
	TrustedOrigins    string `koanf:"trusted_origins"` // space separated hosts
	VisitorCookieName string `koanf:"visitor_cookie_name"`
	SecureCookies     bool   `koanf:"secure_cookies"` // true in production
}

// TrustedOriginList splits TrustedOrigins for csrf.TrustedOrigins.
func (s SecurityConfig) TrustedOriginList() []string {
	return strings.Fields(s.TrustedOrigins)
}

// DisplayConfig controls the guide page.
type DisplayConfig struct {
	AutoLoad       bool   `koanf:"auto_load"`
	DefaultVersion string `koanf:"default_version"`
	MaxVisitors    int    `koanf:"max_visitors"`
	RefreshSeconds int    `koanf:"refresh_seconds"`
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"TOPLANE_SERVER_ADDRESS":       "server.address",
	"TOPLANE_APP_ENV":              "server.environment",
	"TOPLANE_SERVER_READ_TIMEOUT":  "server.read_timeout",
	"TOPLANE_SERVER_WRITE_TIMEOUT": "server.write_timeout",
	"TOPLANE_SERVER_IDLE_TIMEOUT":  "server.idle_timeout",
	"TOPLANE_API_BASE_URL":         "upstream.base_url",
	"TOPLANE_ANALYZE_TIMEOUT":      "upstream.analyze_timeout",
	"TOPLANE_HEALTH_TIMEOUT":       "upstream.health_timeout",
	"TOPLANE_CSRF_SECRET":          "security.csrf_secret",
	"TOPLANE_CSRF_TRUSTED_ORIGINS": "security.trusted_origins",
	"TOPLANE_VISITOR_COOKIE_NAME":  "security.visitor_cookie_name",
	"TOPLANE_AUTO_LOAD":            "display.auto_load",
	"TOPLANE_DEFAULT_VERSION":      "display.default_version",
	"TOPLANE_MAX_VISITORS":         "display.max_visitors",
	"TOPLANE_REFRESH_SECONDS":      "display.refresh_seconds",
	"TOPLANE_LOG_LEVEL":            "log_level",
	"TOPLANE_METRICS_ENABLED":      "metrics_enabled",
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			Environment:  "development",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:8000",
			AnalyzeTimeout: 5 * time.Minute, // scraping + LLM analysis takes minutes
			HealthTimeout:  5 * time.Second,
		},
		Security: SecurityConfig{
			VisitorCookieName: "toplane_visitor",
		},
		Display: DisplayConfig{
			AutoLoad:       true,
			DefaultVersion: models.LatestVersion,
			MaxVisitors:    1000,
			RefreshSeconds: 3,
		},
		LogLevel:       "info",
		MetricsEnabled: true,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load builds a Config by layering, low to high precedence: defaults, the
// YAML file named by TOPLANE_CONFIG, then TOPLANE_* environment variables.
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	cfg.Security.SecureCookies = cfg.IsProduction()

	if cfg.Security.CSRFSecret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Security.CSRFSecret = secret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient is Load for the terminal client: same layering, but only the
// analysis service settings are validated.
func LoadClient() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := errors.Join(cfg.validateUpstream()...); err != nil {
		return nil, fmt.Errorf("configuration validation failed:\n%w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	// .env is a local development convenience; its absence is not an error
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("TOPLANE_", ".", func(s string) string {
		return envKeys[s]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")
	return cfg, nil
}

// validate checks that all required configuration is present and valid.
func (c *Config) validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("TOPLANE_SERVER_ADDRESS must not be empty"))
	}

	errs = append(errs, c.validateUpstream()...)

	// CSRF secret must be set and sufficiently long
	if c.Security.CSRFSecret == "" {
		errs = append(errs, errors.New("TOPLANE_CSRF_SECRET is required in production"))
	} else if len(c.Security.CSRFSecret) < 32 {
		errs = append(errs, errors.New("TOPLANE_CSRF_SECRET must be at least 32 characters"))
	}

	if c.Security.VisitorCookieName == "" {
		errs = append(errs, errors.New("TOPLANE_VISITOR_COOKIE_NAME must not be empty"))
	}

	if !models.IsVersionValid(c.Display.DefaultVersion) {
		errs = append(errs, fmt.Errorf("TOPLANE_DEFAULT_VERSION is not a valid version (got: %q)", c.Display.DefaultVersion))
	}

	if c.Display.RefreshSeconds < 1 {
		errs = append(errs, errors.New("TOPLANE_REFRESH_SECONDS must be at least 1"))
	}

	// Validate environment is a known value
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("TOPLANE_APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	// Combine all errors
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

func (c *Config) validateUpstream() []error {
	var errs []error

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("TOPLANE_API_BASE_URL must be an absolute http(s) URL (got: %q)", c.Upstream.BaseURL))
	}

	if c.Upstream.AnalyzeTimeout <= 0 {
		errs = append(errs, errors.New("TOPLANE_ANALYZE_TIMEOUT must be positive"))
	}

	return errs
}

// randomSecret generates a throwaway CSRF key for non-production runs.
// Tokens issued with it do not survive a restart.
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
