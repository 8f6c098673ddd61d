package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	API        APIConfig        `mapstructure:"api"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Audit      AuditConfig      `mapstructure:"audit"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Autosave   AutosaveConfig   `mapstructure:"autosave"`
	Uploads    UploadsConfig    `mapstructure:"uploads"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// APIConfig points at the remote UBS REST API.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
	BreakerInterval time.Duration `mapstructure:"breaker_interval"`
	GuardCacheTTL   time.Duration `mapstructure:"guard_cache_ttl"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
}

type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	Secret      string        `mapstructure:"secret"`
	Secure      bool          `mapstructure:"secure"`
	Domain      string        `mapstructure:"domain"`
	FallbackTTL time.Duration `mapstructure:"fallback_ttl"`
}

// RedisConfig is optional. Without a URL sessions and invalidations stay in process.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// DatabaseConfig is optional. Without a host the audit trail is disabled.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	LoginPerMinute    int     `mapstructure:"login_per_minute"`
}

type SecurityConfig struct {
	CSRFEnabled    bool     `mapstructure:"csrf_enabled"`
	TrustedOrigins []string `mapstructure:"trusted_origins"`
	HSTS           bool     `mapstructure:"hsts"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	Namespace         string `mapstructure:"namespace"`
}

type AutosaveConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type UploadsConfig struct {
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
}

// SMTPConfig is optional. Without a host support messages are not forwarded.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	SupportTo string `mapstructure:"support_to"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Overrides are explicit deployment settings read from UBS_* variables.
// They win over the config file.
type Overrides struct {
	APIBaseURL    string `envconfig:"API_BASE_URL"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	RedisURL      string `envconfig:"REDIS_URL"`
	DatabaseHost  string `envconfig:"DATABASE_HOST"`
	Port          int    `envconfig:"PORT"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	CookieSecure  *bool  `envconfig:"COOKIE_SECURE"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.breaker_failures", 5)
	v.SetDefault("api.breaker_open_for", 10*time.Second)
	v.SetDefault("api.breaker_interval", time.Minute)
	v.SetDefault("api.guard_cache_ttl", 30*time.Second)
	v.SetDefault("api.default_page_size", 20)

	v.SetDefault("session.cookie_name", "ubs_console")
	v.SetDefault("session.fallback_ttl", 8*time.Hour)

	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.cleanup_interval", 24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.login_per_minute", 10)

	v.SetDefault("security.csrf_enabled", true)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.namespace", "ubs")

	v.SetDefault("autosave.delay", 800*time.Millisecond)
	v.SetDefault("uploads.max_file_bytes", 20<<20)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads .env, then config.yaml from . or ./config, then the
// environment, then UBS_* overrides. A missing config file is not an error.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var o Overrides
	if err := envconfig.Process("UBS", &o); err != nil {
		return nil, fmt.Errorf("failed to read UBS_* overrides: %w", err)
	}
	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.APIBaseURL != "" {
		c.API.BaseURL = o.APIBaseURL
	}
	if o.SessionSecret != "" {
		c.Session.Secret = o.SessionSecret
	}
	if o.RedisURL != "" {
		c.Redis.URL = o.RedisURL
	}
	if o.DatabaseHost != "" {
		c.Database.Host = o.DatabaseHost
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.SMTPPassword != "" {
		c.SMTP.Password = o.SMTPPassword
	}
	if o.CookieSecure != nil {
		c.Session.Secure = *o.CookieSecure
	}
}

// Validate checks settings the console cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 characters"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Uploads.MaxFileBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_file_bytes must be positive"))
	}
	return errors.Join(errs...)
}
