package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Ledger    LedgerConfig
	Occupancy OccupancyConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// LedgerConfig holds aggregation settings
type LedgerConfig struct {
	FetchTimeout       time.Duration // per source collaborator
	IncludeCompanyPaid bool
	ReportCurrencies   []string
	ZeroFill           bool
}

// OccupancyConfig holds status resolution and refresh settings
type OccupancyConfig struct {
	CacheEnabled            bool
	CacheTTL                time.Duration
	RefreshCron             string // six-field cron spec with seconds
	Workers                 int
	QueueSize               int
	JobTimeout              time.Duration
	RetryAttempts           int
	RetryDelay              time.Duration
	RefreshMaterializedView bool
	NotifyChannel           string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // development only
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database instrumentation
	DBTraceEnabled    bool
	DBMetricsEnabled  bool
	DBLogFullSQL      bool // dev only
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled bool
	ProfilingServer  string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LEDGER_ prefix (e.g., LEDGER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// LoadFile loads configuration from an explicit file path, still honouring env overrides
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans whose default is true must be registered so an explicit false survives
	v.SetDefault("ledger.zero_fill", true)
	v.SetDefault("occupancy.cache_enabled", true)
	v.SetDefault("occupancy.refresh_materialized_view", true)
	v.SetDefault("redis.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Ledger: LedgerConfig{
			FetchTimeout:       v.GetDuration("ledger.fetch_timeout"),
			IncludeCompanyPaid: v.GetBool("ledger.include_company_paid"),
			ReportCurrencies:   v.GetStringSlice("ledger.report_currencies"),
			ZeroFill:           v.GetBool("ledger.zero_fill"),
		},
		Occupancy: OccupancyConfig{
			CacheEnabled:            v.GetBool("occupancy.cache_enabled"),
			CacheTTL:                v.GetDuration("occupancy.cache_ttl"),
			RefreshCron:             v.GetString("occupancy.refresh_cron"),
			Workers:                 v.GetInt("occupancy.workers"),
			QueueSize:               v.GetInt("occupancy.queue_size"),
			JobTimeout:              v.GetDuration("occupancy.job_timeout"),
			RetryAttempts:           v.GetInt("occupancy.retry_attempts"),
			RetryDelay:              v.GetDuration("occupancy.retry_delay"),
			RefreshMaterializedView: v.GetBool("occupancy.refresh_materialized_view"),
			NotifyChannel:           v.GetString("occupancy.notify_channel"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBMetricsEnabled:  v.GetBool("telemetry.db_metrics_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:   v.GetString("telemetry.profiling_server"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "village-ledger"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tourist_village"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "occupancy:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Ledger.FetchTimeout == 0 {
		cfg.Ledger.FetchTimeout = 5 * time.Second
	}
	if len(cfg.Ledger.ReportCurrencies) == 0 {
		cfg.Ledger.ReportCurrencies = []string{"EGP", "GBP"}
	}
	if cfg.Occupancy.CacheTTL == 0 {
		cfg.Occupancy.CacheTTL = 10 * time.Minute
	}
	if cfg.Occupancy.RefreshCron == "" {
		cfg.Occupancy.RefreshCron = "0 */5 * * * *"
	}
	if cfg.Occupancy.Workers == 0 {
		cfg.Occupancy.Workers = 3
	}
	if cfg.Occupancy.QueueSize == 0 {
		cfg.Occupancy.QueueSize = 256
	}
	if cfg.Occupancy.JobTimeout == 0 {
		cfg.Occupancy.JobTimeout = time.Minute
	}
	if cfg.Occupancy.RetryAttempts == 0 {
		cfg.Occupancy.RetryAttempts = 2
	}
	if cfg.Occupancy.RetryDelay == 0 {
		cfg.Occupancy.RetryDelay = 5 * time.Second
	}
	if cfg.Occupancy.NotifyChannel == "" {
		cfg.Occupancy.NotifyChannel = "booking_changed"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.ProfilingServer == "" {
		cfg.Telemetry.ProfilingServer = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Ledger.FetchTimeout < 0 {
		return fmt.Errorf("ledger.fetch_timeout cannot be negative")
	}
	for i, code := range c.Ledger.ReportCurrencies {
		upper := strings.ToUpper(strings.TrimSpace(code))
		if upper != "EGP" && upper != "GBP" {
			return fmt.Errorf("ledger.report_currencies: unsupported currency %q", code)
		}
		c.Ledger.ReportCurrencies[i] = upper
	}

	if c.Occupancy.CacheTTL < 0 {
		return fmt.Errorf("occupancy.cache_ttl cannot be negative")
	}
	if c.Occupancy.Workers < 0 {
		return fmt.Errorf("occupancy.workers cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
