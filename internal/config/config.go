package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMetricsAddr     = ":9090"
	defaultSessionLifetime = 12 * time.Hour
	defaultRulesPerPage    = 20
)

type Config struct {
	HTTPAddr            string
	MetricsAddr         string
	CatalogPath         string
	SeedData            bool
	SessionLifetime     time.Duration
	SessionCookieSecure bool
	RulesPerPage        int
}

type LoadOptions struct {
	// SkipDotEnv leaves the process environment as is.
	SkipDotEnv bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if !opts.SkipDotEnv {
		if err := godotenv.Load(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return Config{}, err
			}
		}
	}

	cfg := Config{
		HTTPAddr:            getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:         getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		CatalogPath:         strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		SeedData:            getenvBoolDefault("SEED_DATA", true),
		SessionLifetime:     defaultSessionLifetime,
		SessionCookieSecure: getenvBoolDefault("SESSION_COOKIE_SECURE", false),
		RulesPerPage:        getenvIntDefault("RULES_PER_PAGE", defaultRulesPerPage),
	}

	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionLifetime = d
		}
	}

	if cfg.CatalogPath != "" {
		if _, err := os.Stat(cfg.CatalogPath); err != nil {
			return cfg, errors.New("CATALOG_PATH must point to a readable file")
		}
	}

	return cfg, nil
}

// MetricsEnabled reports whether METRICS_ADDR leaves the metrics server on.
func (c Config) MetricsEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.MetricsAddr)) {
	case "", "off", "disabled", "false":
		return false
	default:
		return true
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
