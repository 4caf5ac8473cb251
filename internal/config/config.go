// Package config handles loading and validating the application configuration
// from an optional YAML file, an optional .env file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults for values that have no natural zero.
const (
	DefaultCatalogURL   = "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"
	DefaultStoreBaseURL = "https://store.epicgames.com"
	DefaultCron         = "0 12 * * *"
	DefaultStatePath    = "data/notified_games.json"
	DefaultServiceName  = "free-games-notifier"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Notifications NotificationsConfig `yaml:"notifications"`
	State         StateConfig         `yaml:"state"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port for the listener.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScheduleConfig defines when scheduled cycles run.
type ScheduleConfig struct {
	Cron         string        `yaml:"cron"`
	Timezone     string        `yaml:"timezone"`
	RunOnStart   bool          `yaml:"run_on_start"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
}

// Location returns the schedule time zone, UTC when unset or invalid.
func (s *ScheduleConfig) Location() *time.Location {
	return locationOrUTC(s.Timezone)
}

// CatalogConfig defines the upstream storefront endpoint.
type CatalogConfig struct {
	URL          string        `yaml:"url"`
	Locale       string        `yaml:"locale"`
	Country      string        `yaml:"country"`
	StoreBaseURL string        `yaml:"store_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// NotificationsConfig defines the notification target and delivery policy.
type NotificationsConfig struct {
	Discord         DiscordConfig `yaml:"discord"`
	DisplayTimezone string        `yaml:"display_timezone"`
	// AtLeastOnce leaves ids of failed deliveries unrecorded so the next
	// cycle retries them. Default false records every new id.
	AtLeastOnce bool `yaml:"at_least_once"`
}

// DisplayLocation returns the zone used to render promotion windows.
func (n *NotificationsConfig) DisplayLocation() *time.Location {
	return locationOrUTC(n.DisplayTimezone)
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL    string        `yaml:"webhook_url"`
	Username      string        `yaml:"username"`
	AvatarURL     string        `yaml:"avatar_url"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Enabled reports whether a webhook is configured.
func (d *DiscordConfig) Enabled() bool {
	return d.WebhookURL != ""
}

// StateConfig defines where the identifier store lives.
type StateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TracingConfig defines OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    *bool   `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// PlaintextExport reports whether spans are exported without TLS. When
// insecure is unset it follows the endpoint: only https:// URLs use TLS.
func (t *TracingConfig) PlaintextExport() bool {
	if t.Insecure != nil {
		return *t.Insecure
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(t.Endpoint)), "https://")
}

// LoadOption adjusts Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	envFile string
	lookup  func(string) (string, bool)
}

// WithEnvFile sets the dotenv file read before environment overrides.
// An empty path disables dotenv loading. Default ".env".
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookup = fn
	}
}

// Load builds the configuration. When path is non-empty the YAML file is
// read with ${VAR} expansion; environment variables then override file
// values, defaults fill the rest, and the result is validated.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{envFile: ".env", lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}

	if o.envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading env file: %w", err)
		}
	}

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := applyEnv(cfg, o.lookup); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}

	str("HOST", &cfg.Server.Host)
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		} else {
			cfg.Server.Port = port
		}
	}

	str("CRON_SCHEDULE", &cfg.Schedule.Cron)
	str("SCHEDULE_TIMEZONE", &cfg.Schedule.Timezone)
	boolean("RUN_ON_START", &cfg.Schedule.RunOnStart)

	str("CATALOG_URL", &cfg.Catalog.URL)
	str("CATALOG_LOCALE", &cfg.Catalog.Locale)
	str("CATALOG_COUNTRY", &cfg.Catalog.Country)

	str("DISCORD_WEBHOOK_URL", &cfg.Notifications.Discord.WebhookURL)
	str("DISCORD_USERNAME", &cfg.Notifications.Discord.Username)
	str("DISPLAY_TIMEZONE", &cfg.Notifications.DisplayTimezone)

	str("STATE_FILE", &cfg.State.Path)

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	boolean("TRACING_ENABLED", &cfg.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	if v, ok := lookup("OTEL_EXPORTER_OTLP_INSECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("OTEL_EXPORTER_OTLP_INSECURE: %w", err))
		} else {
			cfg.Tracing.Insecure = &b
		}
	}
	str("OTEL_SERVICE_NAME", &cfg.Tracing.ServiceName)

	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyScheduleDefaults(&cfg.Schedule)
	applyCatalogDefaults(&cfg.Catalog)
	applyNotificationsDefaults(&cfg.Notifications)
	applyStateDefaults(&cfg.State)
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 3000
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	// The check endpoint runs a full cycle synchronously.
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 5 * time.Minute
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Cron == "" {
		s.Cron = DefaultCron
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if s.CycleTimeout == 0 {
		s.CycleTimeout = 5 * time.Minute
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.URL == "" {
		c.URL = DefaultCatalogURL
	}
	if c.Locale == "" {
		c.Locale = "en-US"
	}
	if c.Country == "" {
		c.Country = "US"
	}
	if c.StoreBaseURL == "" {
		c.StoreBaseURL = DefaultStoreBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.DisplayTimezone == "" {
		n.DisplayTimezone = "UTC"
	}
	d := &n.Discord
	if d.Username == "" {
		d.Username = "Epic Free Games"
	}
	if d.RatePerSecond == 0 {
		d.RatePerSecond = 0.5
	}
	if d.Burst == 0 {
		d.Burst = 2
	}
	if d.Timeout == 0 {
		d.Timeout = 15 * time.Second
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.Path == "" {
		s.Path = DefaultStatePath
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.Insecure == nil {
		insecure := !strings.HasPrefix(strings.ToLower(t.Endpoint), "https://")
		t.Insecure = &insecure
	}
	// Zero is treated as unset.
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
	if t.ServiceName == "" {
		t.ServiceName = DefaultServiceName
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535 (got %d)", cfg.Server.Port))
	}

	if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron %q is invalid: %w", cfg.Schedule.Cron, err))
	}
	if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone %q is invalid: %w", cfg.Schedule.Timezone, err))
	}
	if _, err := time.LoadLocation(cfg.Notifications.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf(
			"notifications.display_timezone %q is invalid: %w", cfg.Notifications.DisplayTimezone, err,
		))
	}

	if err := validateHTTPURL(cfg.Catalog.URL); err != nil {
		errs = append(errs, fmt.Errorf("catalog.url: %w", err))
	}
	if err := validateHTTPURL(cfg.Catalog.StoreBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("catalog.store_base_url: %w", err))
	}

	d := cfg.Notifications.Discord
	if d.WebhookURL != "" {
		if err := validateHTTPURL(d.WebhookURL); err != nil {
			errs = append(errs, fmt.Errorf("notifications.discord.webhook_url: %w", err))
		}
	}
	if d.RatePerSecond < 0 {
		errs = append(errs, errors.New("notifications.discord.rate_per_second must not be negative"))
	}
	if d.Burst < 1 {
		errs = append(errs, errors.New("notifications.discord.burst must be at least 1"))
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL (got %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func locationOrUTC(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
