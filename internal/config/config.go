// Package config resolves the service configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PolicyPrivate = "private"
	PolicyPublic  = "public"

	BackendMinio = "minio"
	BackendS3    = "s3"

	DefaultListenAddr      = ":8080"
	DefaultRegion          = "us-east-1"
	DefaultSignedURLExpiry = time.Hour
	DefaultListTimeout     = 30 * time.Second
	DefaultFetchTimeout    = 60 * time.Second
	DefaultLogFormat       = "text"

	// MaxSignedURLExpiry is the longest lifetime a SigV4 presigned URL accepts.
	MaxSignedURLExpiry = 7 * 24 * time.Hour

	// FileEnv names the environment variable holding an optional YAML config path.
	FileEnv = "IRON_INDEX_CONFIG"
)

// LookupFunc reads one environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type Config struct {
	Title       string `yaml:"title"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogFormat   string `yaml:"log_format"`

	Backend         string `yaml:"backend"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`

	AccessPolicy    string        `yaml:"access_policy"`
	DownloadURL     string        `yaml:"download_url"`
	SignedURLExpiry time.Duration `yaml:"signed_url_expiry"`
	ListTimeout     time.Duration `yaml:"list_timeout"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`

	SortLocale string  `yaml:"sort_locale"`
	RateLimit  float64 `yaml:"rate_limit"`
}

// Default returns the configuration used before any file or environment is applied.
func Default() Config {
	return Config{
		ListenAddr:      DefaultListenAddr,
		LogFormat:       DefaultLogFormat,
		Backend:         BackendMinio,
		Region:          DefaultRegion,
		AccessPolicy:    PolicyPrivate,
		SignedURLExpiry: DefaultSignedURLExpiry,
		ListTimeout:     DefaultListTimeout,
		FetchTimeout:    DefaultFetchTimeout,
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// IRON_INDEX_CONFIG, and then the environment, and validates the result.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()
	if path, ok := lookup(FileEnv); ok && strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&c.Title, "TITLE")
	str(&c.ListenAddr, "LISTEN_ADDR")
	str(&c.MetricsAddr, "METRICS_ADDR")
	str(&c.LogFormat, "LOG_FORMAT")
	str(&c.Backend, "STORE_BACKEND")
	str(&c.Endpoint, "S3_ENDPOINT")
	str(&c.Region, "REGION")
	str(&c.Bucket, "BUCKET_NAME")
	str(&c.AccessKeyID, "ACCESS_KEY_ID")
	str(&c.SecretAccessKey, "SECRET_ACCESS_KEY")
	str(&c.SessionToken, "SESSION_TOKEN")
	str(&c.AccessPolicy, "ACCESS_POLICY", "access_policy")
	str(&c.DownloadURL, "DOWNLOAD_URL", "download_url")
	str(&c.SortLocale, "SORT_LOCALE")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SIGNED_URL_EXPIRY", &c.SignedURLExpiry},
		{"LIST_TIMEOUT", &c.ListTimeout},
		{"FETCH_TIMEOUT", &c.FetchTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("RATE_LIMIT"); ok && strings.TrimSpace(v) != "" {
		limit, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		c.RateLimit = limit
	}
	return nil
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(c.Backend)
	c.AccessPolicy = strings.ToLower(c.AccessPolicy)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
}

// Validate checks the values the service cannot run without. An unknown
// access policy is accepted; requests then fall back to listings.
func (c Config) Validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required (BUCKET_NAME)"))
	}
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required (S3_ENDPOINT)"))
	}
	if c.Backend != BackendMinio && c.Backend != BackendS3 {
		errs = append(errs, fmt.Errorf("unsupported backend %q", c.Backend))
	}
	if c.SignedURLExpiry <= 0 || c.SignedURLExpiry > MaxSignedURLExpiry {
		errs = append(errs, fmt.Errorf("signed url expiry must be within (0, %s]", MaxSignedURLExpiry))
	}
	if c.ListTimeout <= 0 {
		errs = append(errs, errors.New("list timeout must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// KnownPolicy reports whether AccessPolicy is one the resolver acts on.
func (c Config) KnownPolicy() bool {
	return c.AccessPolicy == PolicyPrivate || c.AccessPolicy == PolicyPublic
}
