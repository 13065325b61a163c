// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server           ServerConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	ExchangeRatesAPI ExchangeRatesAPIConfig `mapstructure:"exchangerates_api"`
	ExchangeRateHost ExchangeRateHostConfig `mapstructure:"exchangerate_host"`
	Frankfurter      FrankfurterConfig      `mapstructure:"frankfurter"`
	Worker           WorkerConfig
	Cache            CacheConfig
	Rates            RatesConfig
	Quotes           QuotesConfig
	Fixtures         FixturesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
	ServeMetrics  bool `mapstructure:"serve_metrics"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	ConnectRetries     int    `mapstructure:"connect_retries"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for Asynq task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for application cache (required).
}

// ExchangeRatesAPIConfig holds settings for the exchangeratesapi.io style provider
// (batch "latest" endpoint with base and symbols).
type ExchangeRatesAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ExchangeRateHostConfig holds settings for the exchangerate.host provider.
type ExchangeRateHostConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// FrankfurterConfig holds settings for the frankfurter provider.
type FrankfurterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	QuoteTTLSec                 int `mapstructure:"quote_ttl_sec"`
	ExchangeProviderPriceTTLSec int `mapstructure:"exchange_provider_price_ttl_sec"`
}

// RatesConfig holds rate refresh settings.
type RatesConfig struct {
	RefreshSec       int    `mapstructure:"refresh_sec"`        // age at which a stored rate is stale
	CheckIntervalSec int    `mapstructure:"check_interval_sec"` // scheduler tick, 0 derives it from RefreshSec
	RefreshSchedule  string `mapstructure:"refresh_schedule"`   // optional cron expression, overrides CheckIntervalSec
	SpreadPct        string `mapstructure:"spread_pct"`
	FetchTimeoutSec  int    `mapstructure:"fetch_timeout_sec"`
}

// MaxQuotePrecision is the scale of the quotes.target_amount column.
const MaxQuotePrecision = 12

// QuotesConfig holds quote issuing settings.
type QuotesConfig struct {
	ValiditySec int   `mapstructure:"validity_sec"`
	Precision   int32 `mapstructure:"precision"`
}

// FixturesConfig points at an optional currencies CSV overriding the embedded one.
type FixturesConfig struct {
	CurrenciesPath string `mapstructure:"currencies_path"`
}

// Spread returns the configured spread percentage as a decimal.
func (c RatesConfig) Spread() (decimal.Decimal, error) {
	return decimal.NewFromString(c.SpreadPct)
}

// Schedule returns the asynq scheduler spec for the refresh task. The tick is
// shorter than RefreshSec so a rate that turns stale just after a tick waits
// at most one check interval, not a whole refresh period.
func (c RatesConfig) Schedule() string {
	if c.RefreshSchedule != "" {
		return c.RefreshSchedule
	}
	return fmt.Sprintf("@every %ds", c.CheckInterval())
}

// CheckInterval returns the scheduler tick in seconds: CheckIntervalSec when
// set, otherwise a tenth of RefreshSec (at least one second). Fresh bases are
// skipped without provider calls, so extra ticks are cheap.
func (c RatesConfig) CheckInterval() int {
	if c.CheckIntervalSec > 0 {
		return c.CheckIntervalSec
	}
	return max(c.RefreshSec/10, 1)
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	v.SetEnvPrefix("QUOTESVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for deployments configured for the previous service.
	_ = v.BindEnv("rates.refresh_sec", "QUOTESVC_RATES_REFRESH_SEC", "EXCHANGE_RATES_REFRESH")
	_ = v.BindEnv("quotes.validity_sec", "QUOTESVC_QUOTES_VALIDITY_SEC", "QUOTE_VALIDITY")
	_ = v.BindEnv("exchangerates_api.base_url", "QUOTESVC_EXCHANGERATES_API_BASE_URL", "EXCHANGE_RATES_API_URL")
	_ = v.BindEnv("exchangerates_api.api_key", "QUOTESVC_EXCHANGERATES_API_API_KEY", "EXCHANGE_RATES_KEY")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", true)
	v.SetDefault("server.serve_metrics", true)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "fxquotes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("exchangerates_api.base_url", "https://api.exchangeratesapi.io/v1/latest")
	v.SetDefault("exchangerates_api.api_key", "")
	v.SetDefault("exchangerates_api.timeout_sec", 10)
	v.SetDefault("exchangerate_host.base_url", "https://api.exchangerate.host")
	v.SetDefault("exchangerate_host.api_key", "")
	v.SetDefault("exchangerate_host.timeout_sec", 5)
	v.SetDefault("frankfurter.base_url", "https://api.frankfurter.dev/v1")
	v.SetDefault("frankfurter.timeout_sec", 5)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.max_retry", 0)
	v.SetDefault("worker.timeout_sec", 600)
	v.SetDefault("worker.check_interval_sec", 5)
	v.SetDefault("cache.quote_ttl_sec", 600)
	v.SetDefault("cache.exchange_provider_price_ttl_sec", 300)
	v.SetDefault("rates.refresh_sec", 3000)
	v.SetDefault("rates.check_interval_sec", 0)
	v.SetDefault("rates.refresh_schedule", "")
	v.SetDefault("rates.spread_pct", "0.005")
	v.SetDefault("rates.fetch_timeout_sec", 10)
	v.SetDefault("quotes.validity_sec", 60)
	v.SetDefault("quotes.precision", 2)
	v.SetDefault("fixtures.currencies_path", "")
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if c.Database.ConnectRetries < 0 {
		errs = append(errs, fmt.Errorf("database.connect_retries must be non-negative, got %d", c.Database.ConnectRetries))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set QUOTESVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set QUOTESVC_REDIS_CACHE_ADDR)"))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Cache.QuoteTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.quote_ttl_sec must be positive, got %d", c.Cache.QuoteTTLSec))
	}
	if c.Cache.ExchangeProviderPriceTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.exchange_provider_price_ttl_sec must be positive, got %d", c.Cache.ExchangeProviderPriceTTLSec))
	}

	errs = append(errs, c.Rates.validate()...)
	if c.Cache.ExchangeProviderPriceTTLSec >= c.Rates.RefreshSec && c.Rates.RefreshSec > 0 {
		// a cached provider answer would be stored as a fresh rate on the next cycle
		errs = append(errs, fmt.Errorf("cache.exchange_provider_price_ttl_sec (%d) must be shorter than rates.refresh_sec (%d)",
			c.Cache.ExchangeProviderPriceTTLSec, c.Rates.RefreshSec))
	}

	if c.Quotes.ValiditySec <= 0 {
		errs = append(errs, fmt.Errorf("quotes.validity_sec must be positive, got %d", c.Quotes.ValiditySec))
	}
	if c.Quotes.Precision < 0 || c.Quotes.Precision > MaxQuotePrecision {
		errs = append(errs, fmt.Errorf("quotes.precision must be in [0,%d], got %d", MaxQuotePrecision, c.Quotes.Precision))
	}

	return errors.Join(errs...)
}

func (c RatesConfig) validate() []error {
	var errs []error
	if c.RefreshSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.refresh_sec must be positive, got %d", c.RefreshSec))
	}
	if c.CheckIntervalSec < 0 || (c.CheckIntervalSec > 0 && c.CheckIntervalSec >= c.RefreshSec) {
		errs = append(errs, fmt.Errorf("rates.check_interval_sec must be 0 or shorter than rates.refresh_sec (%d), got %d",
			c.RefreshSec, c.CheckIntervalSec))
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Errorf("rates.refresh_schedule %q is not a valid cron expression: %w", c.RefreshSchedule, err))
		}
	}
	spread, err := c.Spread()
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("rates.spread_pct %q is not a decimal: %w", c.SpreadPct, err))
	case spread.IsNegative() || spread.GreaterThanOrEqual(decimal.NewFromInt(1)):
		errs = append(errs, fmt.Errorf("rates.spread_pct must be in [0,1), got %s", spread))
	}
	if c.FetchTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.fetch_timeout_sec must be positive, got %d", c.FetchTimeoutSec))
	}
	return errs
}
