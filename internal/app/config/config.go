// Package config loads the application configuration: defaults, then an optional
// YAML file, then a .env file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/platform/db"
)

// Market data sources.
const (
	SourceYahoo      = "yahoo"
	SourceTwelveData = "twelvedata"
	SourceStore      = "store"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Format string `yaml:"format"`
		Level  string `yaml:"level"`
	} `yaml:"log"`

	// Source is where the chart endpoint loads bars from.
	Source string `yaml:"source"`
	HTTP   struct {
		Timeout time.Duration `yaml:"timeout"`
		Proxy   string        `yaml:"proxy"`
	} `yaml:"http"`
	Yahoo struct {
		BaseURL   string            `yaml:"base_url"`
		UserAgent string            `yaml:"user_agent"`
		SymbolMap map[string]string `yaml:"symbol_map"`
	} `yaml:"yahoo"`
	TwelveData struct {
		APIKey       string        `yaml:"api_key"`
		BaseURL      string        `yaml:"base_url"`
		RateLimit    int           `yaml:"rate_limit"`
		RateInterval time.Duration `yaml:"rate_interval"`
	} `yaml:"twelvedata"`
	Breaker struct {
		MaxFailures uint32        `yaml:"max_failures"`
		OpenTimeout time.Duration `yaml:"open_timeout"`
	} `yaml:"breaker"`

	Database struct {
		Driver        string `yaml:"driver"`
		Host          string `yaml:"host"`
		Port          string `yaml:"port"`
		User          string `yaml:"user"`
		Password      string `yaml:"password"`
		Name          string `yaml:"name"`
		SSLMode       string `yaml:"sslmode"`
		Path          string `yaml:"path"`
		RunMigrations bool   `yaml:"run_migrations"`
	} `yaml:"database"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		Namespace string `yaml:"namespace"`
		Zone      string `yaml:"zone"` // daily cache expiry is 08:00 in this zone
	} `yaml:"redis"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Indicators struct {
		Trend1Enabled     bool `yaml:"trend1_enabled"`
		Trend1Period      int  `yaml:"trend1_period"`
		Trend2Enabled     bool `yaml:"trend2_enabled"`
		Trend2Period      int  `yaml:"trend2_period"`
		BandsEnabled      bool `yaml:"bands_enabled"`
		OscillatorEnabled bool `yaml:"oscillator_enabled"`
		SignalsVisible    bool `yaml:"signals_visible"`
	} `yaml:"indicators"`

	Ingest struct {
		Source   string `yaml:"source"`
		Lookback string `yaml:"lookback"`
		Schedule string `yaml:"schedule"` // cron spec with seconds; empty runs once
	} `yaml:"ingest"`

	// Watchlist seeds the symbol table on startup.
	Watchlist []WatchlistEntry `yaml:"watchlist"`
}

// WatchlistEntry is one seeded symbol.
type WatchlistEntry struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Market string `yaml:"market"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Log.Format = "text"
	cfg.Log.Level = "info"

	cfg.Source = SourceYahoo
	cfg.HTTP.Timeout = 10 * time.Second
	cfg.TwelveData.RateLimit = 8
	cfg.TwelveData.RateInterval = time.Minute
	cfg.Breaker.MaxFailures = 5
	cfg.Breaker.OpenTimeout = 30 * time.Second

	cfg.Database.Driver = db.DriverSQLite
	cfg.Database.Port = "5432"
	cfg.Database.Path = "stock_chart.db"
	cfg.Database.RunMigrations = true
	cfg.Redis.Namespace = "chart"
	cfg.Redis.Zone = "Asia/Tokyo"
	cfg.Auth.TokenTTL = 24 * time.Hour

	d := entity.DefaultIndicatorConfig()
	cfg.Indicators.Trend1Enabled = d.Trend1Enabled
	cfg.Indicators.Trend1Period = d.Trend1Period
	cfg.Indicators.Trend2Enabled = d.Trend2Enabled
	cfg.Indicators.Trend2Period = d.Trend2Period
	cfg.Indicators.BandsEnabled = d.BandsEnabled
	cfg.Indicators.OscillatorEnabled = d.OscillatorEnabled
	cfg.Indicators.SignalsVisible = d.SignalsVisible

	cfg.Ingest.Source = SourceYahoo
	cfg.Ingest.Lookback = string(entity.LookbackMax)
	return cfg
}

// Load reads path (YAML, optional) and envFile (dotenv, optional), then applies
// environment variable overrides. Variables already set in the process win over envFile.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "ADDR")
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.Level, "LOG_LEVEL")

	setString(&c.Source, "MARKET_SOURCE")
	setString(&c.HTTP.Proxy, "HTTPS_PROXY")
	setString(&c.Yahoo.BaseURL, "YAHOO_BASE_URL")
	setString(&c.TwelveData.APIKey, "TWELVE_DATA_API_KEY")
	setString(&c.TwelveData.BaseURL, "TWELVE_DATA_BASE_URL")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.Database.Path, "SQLITE_PATH")
	if err := setBool(&c.Database.RunMigrations, "RUN_MIGRATIONS"); err != nil {
		return err
	}

	setString(&c.Redis.Addr, "REDIS_ADDR")
	if h := os.Getenv("REDIS_HOST"); h != "" && os.Getenv("REDIS_ADDR") == "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		c.Redis.Addr = h + ":" + port
	}
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Ingest.Source, "INGEST_SOURCE")
	setString(&c.Ingest.Schedule, "INGEST_SCHEDULE")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IndicatorDefaults returns the dashboard's initial indicator selection.
func (c *Config) IndicatorDefaults() entity.IndicatorConfig {
	return entity.IndicatorConfig{
		Trend1Enabled:     c.Indicators.Trend1Enabled,
		Trend1Period:      c.Indicators.Trend1Period,
		Trend2Enabled:     c.Indicators.Trend2Enabled,
		Trend2Period:      c.Indicators.Trend2Period,
		BandsEnabled:      c.Indicators.BandsEnabled,
		OscillatorEnabled: c.Indicators.OscillatorEnabled,
		SignalsVisible:    c.Indicators.SignalsVisible,
	}
}

// DB returns the database settings in the shape the db package expects.
func (c *Config) DB() db.Config {
	return db.Config{
		Driver:         c.Database.Driver,
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		User:           c.Database.User,
		Password:       c.Database.Password,
		Name:           c.Database.Name,
		SSLMode:        c.Database.SSLMode,
		Path:           c.Database.Path,
		ConnectTimeout: 60 * time.Second,
		RetryInterval:  3 * time.Second,
		RunMigrations:  c.Database.RunMigrations,
	}
}

// Validate checks that the configuration is usable before anything connects.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	for _, src := range []string{c.Source, c.Ingest.Source} {
		if err := c.validateSource(src); err != nil {
			return err
		}
	}
	if c.Ingest.Source == SourceStore {
		return errors.New("ingest.source cannot be store")
	}
	switch c.Database.Driver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database.host and database.name are required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if err := c.IndicatorDefaults().Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if _, err := entity.ParseLookback(c.Ingest.Lookback); err != nil {
		return fmt.Errorf("ingest.lookback: %w", err)
	}
	if c.Ingest.Schedule != "" {
		if _, err := cron.NewParser(CronSpec).Parse(c.Ingest.Schedule); err != nil {
			return fmt.Errorf("ingest.schedule: %w", err)
		}
	}
	for i, w := range c.Watchlist {
		if entity.NormalizeSymbol(w.Code) == "" {
			return fmt.Errorf("watchlist[%d].code is required", i)
		}
	}
	return nil
}

// CronSpec is the cron syntax accepted by ingest.schedule: seconds field first.
const CronSpec = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

func (c *Config) validateSource(src string) error {
	switch src {
	case SourceYahoo, SourceStore:
		return nil
	case SourceTwelveData:
		if c.TwelveData.APIKey == "" {
			return errors.New("twelvedata.api_key is required when twelvedata is a source")
		}
		return nil
	default:
		return fmt.Errorf("unknown market source %q", src)
	}
}
