// Package config loads run settings from defaults, .env, the environment,
// flags and positional arguments.
package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/user/sitesimilarity/internal/engine"
	"github.com/user/sitesimilarity/internal/similarity"
)

const Usage = "Usage: sitesimilarity [flags] file1.txt file2.txt [threshold] [num_threads] [debug]"

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

var (
	ErrUsage          = errors.New("invalid arguments")
	ErrInvalidWorkers = errors.New("number of threads must be a positive integer")
)

// Config stores all configuration for a run.
type Config struct {
	File1 string `mapstructure:"-"`
	File2 string `mapstructure:"-"`

	Threshold       float64 `mapstructure:"THRESHOLD"`
	Workers         int     `mapstructure:"WORKERS"`
	Debug           bool    `mapstructure:"DEBUG"`
	FetchTimeout    int     `mapstructure:"FETCH_TIMEOUT"` // in seconds
	IgnoreTLSErrors bool    `mapstructure:"IGNORE_TLS_ERRORS"`
	MaxBodyBytes    int64   `mapstructure:"MAX_BODY_BYTES"`
	UserAgent       string  `mapstructure:"USER_AGENT"`
	Proxies         string  `mapstructure:"PROXIES"` // comma separated
	FetchMode       string  `mapstructure:"FETCH_MODE"`
	TextOnly        bool    `mapstructure:"TEXT_ONLY"`
	Metric          string  `mapstructure:"METRIC"`
	StatusAddr      string  `mapstructure:"STATUS_ADDR"`
	RedisAddr       string  `mapstructure:"REDIS_ADDR"`
	RedisChannel    string  `mapstructure:"REDIS_CHANNEL"`
	PostgresURL     string  `mapstructure:"POSTGRES_URL"`
}

// Timeout is FetchTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// ProxyList splits Proxies into its entries.
func (c *Config) ProxyList() []string {
	if strings.TrimSpace(c.Proxies) == "" {
		return nil
	}
	return strings.Split(c.Proxies, ",")
}

// Load builds the configuration from defaults, an optional .env file, the
// environment, flags and finally the positional arguments, in increasing
// order of precedence. args excludes the program name.
func Load(args []string, stderr io.Writer) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine; the environment alone is enough.
	_ = v.ReadInConfig()

	v.SetDefault("THRESHOLD", similarity.DefaultThreshold)
	v.SetDefault("WORKERS", engine.DefaultWorkers)
	v.SetDefault("DEBUG", false)
	v.SetDefault("FETCH_TIMEOUT", 3)
	v.SetDefault("IGNORE_TLS_ERRORS", true)
	v.SetDefault("MAX_BODY_BYTES", 10<<20)
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("PROXIES", "")
	v.SetDefault("FETCH_MODE", FetchModeHTTP)
	v.SetDefault("TEXT_ONLY", false)
	v.SetDefault("METRIC", similarity.MetricLevenshtein)
	v.SetDefault("STATUS_ADDR", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_CHANNEL", "sitesimilarity:matches")
	v.SetDefault("POSTGRES_URL", "")

	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}

	positional := fs.Args()
	if len(positional) < 2 || len(positional) > 5 {
		return nil, fmt.Errorf("%w: expected 2 to 5 positional arguments, got %d", ErrUsage, len(positional))
	}
	if len(positional) >= 3 {
		th, err := strconv.ParseFloat(positional[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: threshold %q is not a number", ErrUsage, positional[2])
		}
		v.Set("THRESHOLD", th)
	}
	if len(positional) >= 4 {
		n, err := strconv.Atoi(positional[3])
		if err != nil {
			return nil, fmt.Errorf("%w: num_threads %q is not an integer", ErrUsage, positional[3])
		}
		v.Set("WORKERS", n)
	}
	if len(positional) == 5 {
		v.Set("DEBUG", strings.EqualFold(positional[4], "true"))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.File1, cfg.File2 = positional[0], positional[1]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := similarity.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.FetchTimeout < 1 {
		return fmt.Errorf("fetch timeout must be at least 1 second, got %d", c.FetchTimeout)
	}
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("unknown fetch mode %q", c.FetchMode)
	}
	if _, err := similarity.New(c.Metric); err != nil {
		return err
	}
	return nil
}

// flagKeys maps config keys to the flags that can override them.
var flagKeys = map[string]string{
	"THRESHOLD":         "threshold",
	"WORKERS":           "workers",
	"DEBUG":             "debug",
	"FETCH_TIMEOUT":     "timeout",
	"IGNORE_TLS_ERRORS": "insecure",
	"MAX_BODY_BYTES":    "max-body-bytes",
	"USER_AGENT":        "user-agent",
	"PROXIES":           "proxies",
	"FETCH_MODE":        "fetch-mode",
	"TEXT_ONLY":         "text-only",
	"METRIC":            "metric",
	"STATUS_ADDR":       "status-addr",
	"REDIS_ADDR":        "redis-addr",
	"REDIS_CHANNEL":     "redis-channel",
	"POSTGRES_URL":      "postgres-url",
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sitesimilarity", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, Usage)
		fs.PrintDefaults()
	}

	fs.Float64("threshold", similarity.DefaultThreshold, "minimum similarity ratio for a match, in (0, 1]")
	fs.IntP("workers", "t", engine.DefaultWorkers, "number of concurrent comparison workers")
	fs.BoolP("debug", "d", false, "trace every fetch and cache lookup")
	fs.Int("timeout", 3, "per-fetch timeout in seconds")
	fs.Bool("insecure", true, "skip TLS certificate verification")
	fs.Int64("max-body-bytes", 10<<20, "maximum number of body bytes read per page")
	fs.StringP("user-agent", "H", "", "User-Agent header (default: rotate browser agents)")
	fs.String("proxies", "", "comma separated upstream proxies, rotated per request")
	fs.String("fetch-mode", FetchModeHTTP, "how pages are fetched: http or browser")
	fs.Bool("text-only", false, "compare visible page text instead of raw HTML")
	fs.String("metric", similarity.MetricLevenshtein, "similarity metric: levenshtein or jaro-winkler")
	fs.String("status-addr", "", "serve /metrics and /api endpoints on this address while running")
	fs.String("redis-addr", "", "publish matches to this Redis server")
	fs.String("redis-channel", "sitesimilarity:matches", "Redis channel and list receiving matches")
	fs.String("postgres-url", "", "record matches in this PostgreSQL database")
	return fs
}
