// Package config provides configuration management for the responder and consumer.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBodySizeLimit is the default maximum request body size (10MB)
const DefaultBodySizeLimit int64 = 10 * 1024 * 1024

// Defaults applied before any file or environment source is read.
const (
	DefaultPort            = "8080"
	DefaultBaseURL         = "http://localhost:8081"
	DefaultTimeout         = 10 * time.Second
	DefaultMetricsEndpoint = "/metrics"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Consumer ConsumerConfig `yaml:"consumer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration for the responder
type ServerConfig struct {
	Port          string `yaml:"port"`
	BodySizeLimit int64  `yaml:"body_size_limit"`
}

// ConsumerConfig holds the consumer's view of the responder
type ConsumerConfig struct {
	// BaseURL is the responder's scheme://host[:port]
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a single round trip
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig holds slog handler settings
type LogConfig struct {
	// Format is one of auto, text, json
	Format string `yaml:"format"`
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          DefaultPort,
			BodySizeLimit: DefaultBodySizeLimit,
		},
		Consumer: ConsumerConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Metrics: MetricsConfig{
			Endpoint: DefaultMetricsEndpoint,
		},
		Log: LogConfig{
			Format: "auto",
			Level:  "info",
		},
	}
}

// Load reads configuration from .env, the YAML config file and the environment,
// in that order of increasing precedence.
func Load() (*Config, error) {
	return LoadFiles(".env", resolveConfigPath())
}

// LoadFiles is Load with explicit file locations. Either path may point to a
// missing file; an empty yamlPath skips the YAML source.
func LoadFiles(envPath, yamlPath string) (*Config, error) {
	// .env never overrides variables already present in the environment
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	cfg := Defaults()

	if yamlPath != "" {
		if err := applyYAML(cfg, yamlPath); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath returns CONFIG_PATH, or the first existing default location.
func resolveConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	for _, candidate := range []string{"config/config.yaml", "config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func applyYAML(cfg *Config, yamlPath string) error {
	raw, err := os.ReadFile(yamlPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", yamlPath, err)
	}

	expanded := expandString(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", yamlPath, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("BODY_SIZE_LIMIT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BODY_SIZE_LIMIT %q: %w", v, err)
		}
		cfg.Server.BodySizeLimit = n
	}
	if v := os.Getenv("RESPONDER_BASE_URL"); v != "" {
		cfg.Consumer.BaseURL = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.Consumer.Timeout = d
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		cfg.Metrics.Enabled = enabled
	}
	if v := os.Getenv("METRICS_ENDPOINT"); v != "" {
		cfg.Metrics.Endpoint = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	return nil
}

// parseDuration accepts either plain integers (seconds) or Go duration strings.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks the configuration for values the components cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port must not be empty"))
	} else if n, err := strconv.Atoi(c.Server.Port); err != nil || n < 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if c.Server.BodySizeLimit < 0 {
		errs = append(errs, errors.New("server.body_size_limit must not be negative"))
	}

	// a bare host:port means plain http
	if c.Consumer.BaseURL != "" && !strings.Contains(c.Consumer.BaseURL, "://") {
		c.Consumer.BaseURL = "http://" + c.Consumer.BaseURL
	}
	u, err := url.Parse(c.Consumer.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("consumer.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("consumer.base_url %q must use http or https", c.Consumer.BaseURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("consumer.base_url %q has no host", c.Consumer.BaseURL))
	}
	if c.Consumer.Timeout <= 0 {
		errs = append(errs, errors.New("consumer.timeout must be positive"))
	}

	if c.Metrics.Enabled {
		if c.Metrics.Endpoint == "" {
			c.Metrics.Endpoint = DefaultMetricsEndpoint
		}
		c.Metrics.Endpoint = path.Clean("/" + c.Metrics.Endpoint)
	}

	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be one of auto, text, json", c.Log.Format))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}

	return errors.Join(errs...)
}

// placeholderPattern matches ${VAR} and ${VAR:-default}.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders with values
// from the environment. A placeholder whose variable is unset or empty and
// has no default is left as written.
func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		if v := os.Getenv(groups[1]); v != "" {
			return v
		}
		if groups[2] != "" {
			return groups[3]
		}
		return match
	})
}
