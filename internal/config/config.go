// Package config resolves shcx settings from defaults, an optional YAML
// file, SHCX_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/export"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

// EnvPrefix prefixes every environment override, e.g. SHCX_CRAWL_MAX_IN_FLIGHT.
const EnvPrefix = "SHCX"

// Config is the top-level application configuration.
type Config struct {
	AWS     AWSConfig     `mapstructure:"aws"     yaml:"aws"`
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Fetch   FetchConfig   `mapstructure:"fetch"   yaml:"fetch"`
	Export  ExportConfig  `mapstructure:"export"  yaml:"export"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AWSConfig selects the credentials used for the catalog API.
type AWSConfig struct {
	// Profile is the shared-config profile; empty means the default chain.
	Profile string `mapstructure:"profile" yaml:"profile"`

	// Region overrides the profile's region.
	Region string `mapstructure:"region" yaml:"region"`
}

// CrawlConfig tunes documentation crawling.
type CrawlConfig struct {
	BaseURL           string        `mapstructure:"base_url"            yaml:"base_url"`
	MaxInFlight       int           `mapstructure:"max_in_flight"       yaml:"max_in_flight"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"     yaml:"request_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"         yaml:"max_retries"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"        yaml:"backoff_base"`
}

// FetchConfig tunes control detail fetching.
type FetchConfig struct {
	// Workers sizes the detail worker pool; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// ExportConfig selects the output.
type ExportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`

	// Output is the destination path; empty means a timestamped file in the
	// working directory.
	Output string `mapstructure:"output" yaml:"output"`

	// Wide adds one boolean column per standard.
	Wide bool `mapstructure:"wide" yaml:"wide"`
}

// Defaults applied before any file, environment or flag.
const (
	DefaultRequestsPerSecond = 10.0
	DefaultTimeout           = 30 * time.Minute
)

// Loader is the interface for resolving a Config.
type Loader interface {
	// Load reads, merges, and validates the configuration.
	Load() (*Config, error)

	// ConfigPath returns the configuration file in use, or "" when none.
	ConfigPath() string
}

// NewViper returns a viper instance carrying every default and reading
// SHCX_* environment overrides. Flags are bound onto it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("crawl.base_url", docs.DefaultBaseURL)
	v.SetDefault("crawl.max_in_flight", runner.DefaultMaxInFlight)
	v.SetDefault("crawl.requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("crawl.request_timeout", docs.DefaultRequestTimeout)
	v.SetDefault("crawl.max_retries", docs.DefaultMaxRetries)
	v.SetDefault("crawl.backoff_base", docs.DefaultBackoffBase)
	v.SetDefault("fetch.workers", 0)
	v.SetDefault("export.format", string(export.FormatXLSX))
	v.SetDefault("export.output", "")
	v.SetDefault("export.wide", false)
	v.SetDefault("timeout", DefaultTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns ~/.config/shcx/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "shcx", "config.yaml"), nil
}

// FileLoader loads a Config through a viper instance.
type FileLoader struct {
	v    *viper.Viper
	path string
}

// NewLoader returns a Loader over v. An explicit path must exist; when path
// is empty the default path is used only if the file is present.
func NewLoader(v *viper.Viper, path string) *FileLoader {
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	return &FileLoader{v: v, path: path}
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load implements Loader.
func (l *FileLoader) Load() (*Config, error) {
	if l.path != "" {
		l.v.SetConfigFile(l.path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Crawl.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("crawl.base_url %q must be an absolute http(s) URL", c.Crawl.BaseURL))
	}
	if c.Crawl.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("crawl.max_in_flight must be at least 1, got %d", c.Crawl.MaxInFlight))
	}
	if c.Crawl.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("crawl.requests_per_second must not be negative, got %g", c.Crawl.RequestsPerSecond))
	}
	if c.Crawl.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("crawl.request_timeout must be positive, got %s", c.Crawl.RequestTimeout))
	}
	if c.Crawl.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("crawl.max_retries must not be negative, got %d", c.Crawl.MaxRetries))
	}
	if c.Crawl.BackoffBase <= 0 {
		errs = append(errs, fmt.Errorf("crawl.backoff_base must be positive, got %s", c.Crawl.BackoffBase))
	}
	if c.Fetch.Workers < 0 {
		errs = append(errs, fmt.Errorf("fetch.workers must not be negative, got %d", c.Fetch.Workers))
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
