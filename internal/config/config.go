package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/logging"
	"github.com/serroba/shortlink/internal/shortener"
)

// Options are the service settings, read from flags or SERVICE_* environment variables.
type Options struct {
	Port           int    `default:"8080" help:"Port to listen on" json:"server_port" short:"p"`
	DatabaseURL    string `help:"PostgreSQL connection URL" json:"database_url" name:"database-url"`
	BaseURL        string `help:"Public base URL of short links, defaults to http://localhost:{port}" json:"shortlink_base_url" name:"base-url"`
	CodeLength     int    `default:"8" help:"Length of generated short codes (1-16)" json:"shortlink_length" short:"c"`
	ExpireDays     int    `default:"10" help:"Days a short link stays valid" json:"shortlink_expire_days"`
	MaxHashRetries int    `default:"4" help:"Collision probes per request (1-62)" json:"shortlink_max_hash_retries"`
	RedisURL       string `help:"Redis URL for the cache and event stream, empty disables both" json:"redis_url" name:"redis-url"`
	CacheTTL       string `default:"1h" help:"Shortlink cache entry lifetime" json:"cache_ttl" name:"cache-ttl"`
	LogLevel       string `default:"info" help:"Log level: error, warn, info, debug or trace" json:"logging_level"`
	LogFormat      string `default:"json" help:"Log format: json or console" json:"logging_format"`
	LogFile        string `help:"Also write logs to this file" json:"logging_file"`
}

// Validate reports every invalid setting at once.
func (o *Options) Validate() error {
	var errs []error

	if o.Port < 1 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", o.Port))
	}

	if err := validateDatabaseURL(o.DatabaseURL); err != nil {
		errs = append(errs, err)
	}

	if o.BaseURL != "" {
		if _, err := url.Parse(o.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("base-url: %w", err))
		}
	}

	if o.CodeLength < shortener.MinCodeLength || o.CodeLength > shortener.MaxCodeLength {
		errs = append(errs, fmt.Errorf("code-length %d out of range %d-%d",
			o.CodeLength, shortener.MinCodeLength, shortener.MaxCodeLength))
	}

	if o.ExpireDays < 1 {
		errs = append(errs, fmt.Errorf("expire-days must be at least 1, got %d", o.ExpireDays))
	}

	if o.MaxHashRetries < 1 || o.MaxHashRetries > shortener.MaxRetryLimit {
		errs = append(errs, fmt.Errorf("max-hash-retries %d out of range 1-%d",
			o.MaxHashRetries, shortener.MaxRetryLimit))
	}

	if o.RedisURL != "" {
		if _, err := redis.ParseURL(o.RedisURL); err != nil {
			errs = append(errs, fmt.Errorf("redis-url: %w", err))
		}
	}

	if ttl, err := time.ParseDuration(o.CacheTTL); err != nil {
		errs = append(errs, fmt.Errorf("cache-ttl: %w", err))
	} else if ttl < 0 {
		errs = append(errs, fmt.Errorf("cache-ttl must not be negative, got %s", o.CacheTTL))
	}

	if _, err := logging.ParseLevel(o.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains([]string{"json", "console"}, o.LogFormat) {
		errs = append(errs, fmt.Errorf("log-format must be json or console, got %q", o.LogFormat))
	}

	return errors.Join(errs...)
}

func validateDatabaseURL(raw string) error {
	if raw == "" {
		return errors.New("database-url is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("database-url: %w", err)
	}

	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("database-url scheme must be postgres, got %q", u.Scheme)
	}

	return nil
}

// ResolvedBaseURL returns the base of public short links without a trailing slash.
func (o *Options) ResolvedBaseURL() string {
	if o.BaseURL == "" {
		return fmt.Sprintf("http://localhost:%d", o.Port)
	}

	return strings.TrimRight(o.BaseURL, "/")
}

// Retention is how long a new shortlink stays valid.
func (o *Options) Retention() time.Duration {
	return time.Duration(o.ExpireDays) * 24 * time.Hour
}

// CacheDuration returns the parsed cache TTL, zero when unparseable.
func (o *Options) CacheDuration() time.Duration {
	ttl, _ := time.ParseDuration(o.CacheTTL)

	return ttl
}

// Masked returns a copy with credentials in connection URLs hidden.
func (o *Options) Masked() Options {
	masked := *o
	masked.DatabaseURL = MaskPassword(o.DatabaseURL)
	masked.RedisURL = MaskPassword(o.RedisURL)

	return masked
}

// MaskPassword replaces the password of a URL's userinfo with '*' of the same
// length. Every other byte of raw is kept as written.
func MaskPassword(raw string) string {
	start := strings.Index(raw, "://")
	if start < 0 {
		return raw
	}

	start += len("://")

	authority := raw[start:]
	if end := strings.IndexAny(authority, "/?#"); end >= 0 {
		authority = authority[:end]
	}

	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return raw
	}

	colon := strings.Index(authority[:at], ":")
	if colon < 0 {
		return raw
	}

	from := start + colon + 1
	to := start + at

	return raw[:from] + strings.Repeat("*", to-from) + raw[to:]
}
