package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	DistrictsURL  string
	ForecastURL   string
	AirQualityURL string
	Timezone      string
	ForecastDays  int
	FetchTimeout  time.Duration

	RequestTimeout time.Duration

	DistrictCacheTTL time.Duration
	WeatherCacheTTL  time.Duration
	CacheBackend     string // "in_memory", "redis", or "memcached"

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	BatchConcurrency int

	RateLimitRPS   int
	RateLimitBurst int

	DegradedWindow   time.Duration
	DegradedErrorPct int

	RefreshInterval time.Duration
	WarmCacheOnBoot bool

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Providers struct {
		DistrictsURL  string `yaml:"districts_url"`
		ForecastURL   string `yaml:"forecast_url"`
		AirQualityURL string `yaml:"air_quality_url"`
		Timezone      string `yaml:"timezone"`
		ForecastDays  int    `yaml:"forecast_days"`
		FetchTimeout  string `yaml:"fetch_timeout"`
	} `yaml:"providers"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend     string `yaml:"backend"`
		DistrictTTL string `yaml:"district_ttl"`
		WeatherTTL  string `yaml:"weather_ttl"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Batch struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"batch"`

	Reliability struct {
		RateLimitRPS     int    `yaml:"rate_limit_rps"`
		RateLimitBurst   int    `yaml:"rate_limit_burst"`
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"reliability"`

	Refresh struct {
		Interval   string `yaml:"interval"`
		WarmOnBoot bool   `yaml:"warm_on_boot"`
	} `yaml:"refresh"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) with env
// overrides for the cache backend and addresses. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.DistrictsURL = strings.TrimSpace(os.Getenv("DISTRICTS_URL"))
	if cfg.DistrictsURL == "" {
		cfg.DistrictsURL = strings.TrimSpace(fc.Providers.DistrictsURL)
	}
	cfg.ForecastURL = strings.TrimSpace(fc.Providers.ForecastURL)
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	cfg.AirQualityURL = strings.TrimSpace(fc.Providers.AirQualityURL)
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	}
	cfg.Timezone = strings.TrimSpace(fc.Providers.Timezone)
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Dhaka"
	}
	cfg.ForecastDays = fc.Providers.ForecastDays
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 7
	}
	cfg.FetchTimeout = parseDuration(fc.Providers.FetchTimeout, 10*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 60*time.Second)

	cfg.DistrictCacheTTL = parseDuration(fc.Cache.DistrictTTL, 24*time.Hour)
	cfg.WeatherCacheTTL = parseDuration(fc.Cache.WeatherTTL, time.Hour)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = strings.TrimSpace(fc.Cache.Redis.Addr)
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = fc.Cache.Redis.Password
	}
	cfg.RedisDB = fc.Cache.Redis.DB

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.BatchConcurrency = fc.Batch.Concurrency
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 8
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}
	cfg.DegradedWindow = parseDuration(fc.Reliability.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Reliability.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 50
	}

	cfg.RefreshInterval = parseDurationOrZero(fc.Refresh.Interval, 0)
	cfg.WarmCacheOnBoot = fc.Refresh.WarmOnBoot

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative durations pass through as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.DistrictsURL == "" {
		return fmt.Errorf("providers.districts_url required (set yaml or DISTRICTS_URL env)")
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("providers.fetch_timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.FetchTimeout {
		cfg.RequestTimeout = 2*cfg.FetchTimeout + time.Second
	}
	switch cfg.CacheBackend {
	case "in_memory", "redis", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory, redis, or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
