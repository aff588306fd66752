package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
)

// Config holds the bizsearch configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Solr    SolrConfig    `yaml:"solr"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolrConfig holds search engine connection settings.
type SolrConfig struct {
	BaseURL          string  `yaml:"base_url"`
	Core             string  `yaml:"core"`
	TimeoutSec       int     `yaml:"timeout_sec"`
	MaxQPS           float64 `yaml:"max_qps"` // 0 = unlimited
	Username         string  `yaml:"username"`
	Password         string  `yaml:"password"`
	ReadinessTimeout int     `yaml:"readiness_timeout_sec"`
	FacetLimit       int     `yaml:"facet_limit"` // 0 = Solr default
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Addrs          []string `yaml:"addrs"`
	Password       string   `yaml:"password"`
	TTLSec         int      `yaml:"ttl_sec"`
	DialTimeoutSec int      `yaml:"dial_timeout_sec"`
}

// SearchConfig holds paging limits and per-field dash handling.
type SearchConfig struct {
	DefaultRows int `yaml:"default_rows"`
	MaxRows     int `yaml:"max_rows"`
	// QueryFields overrides the dash mode of a query field, e.g. name_q: pad.
	QueryFields map[string]string `yaml:"query_fields"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML config, expanding ${VAR} and ${VAR:-default} first.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Solr.Core == "" {
		c.Solr.Core = "business"
	}
	if c.Solr.TimeoutSec <= 0 {
		c.Solr.TimeoutSec = 15
	}
	if c.Solr.ReadinessTimeout <= 0 {
		c.Solr.ReadinessTimeout = 30
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.DialTimeoutSec <= 0 {
		c.Cache.DialTimeoutSec = 5
	}
	if c.Search.DefaultRows <= 0 {
		c.Search.DefaultRows = 10
	}
	if c.Search.MaxRows <= 0 {
		c.Search.MaxRows = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Solr.BaseURL == "" {
		return fmt.Errorf("solr.base_url is required")
	}
	if u, err := url.Parse(c.Solr.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("solr.base_url must be an absolute URL, got %q", c.Solr.BaseURL)
	}
	if c.Solr.MaxQPS < 0 {
		return fmt.Errorf("solr.max_qps must not be negative, got %v", c.Solr.MaxQPS)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Search.DefaultRows > c.Search.MaxRows {
		return fmt.Errorf("search.default_rows (%d) exceeds search.max_rows (%d)",
			c.Search.DefaultRows, c.Search.MaxRows)
	}
	if _, err := c.Search.DashModes(); err != nil {
		return err
	}
	return nil
}

// DashModes returns the parsed query field overrides.
func (s SearchConfig) DashModes() (map[field.Field]dash.Mode, error) {
	modes := make(map[field.Field]dash.Mode, len(s.QueryFields))
	for name, raw := range s.QueryFields {
		m, err := dash.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("search.query_fields.%s: %w", name, err)
		}
		modes[field.Field(name)] = m
	}
	return modes, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
