package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Per-client limit on the compute endpoints, zero disables it
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Redis, empty disables result caching
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// League
	LeagueFixturePath string `mapstructure:"LEAGUE_FIXTURE_PATH"`
	SeasonStart       string `mapstructure:"SEASON_START"`
	WeekLengthDays    int    `mapstructure:"WEEK_LENGTH_DAYS"`
	// Cron expression for re-reading the fixture, empty disables reloads
	LeagueReloadSchedule string `mapstructure:"LEAGUE_RELOAD_SCHEDULE"`

	// Simulation
	DefaultNumDays    int     `mapstructure:"DEFAULT_NUM_DAYS"`
	DefaultNumSamples int     `mapstructure:"DEFAULT_NUM_SAMPLES"`
	DefaultHalfLife   float64 `mapstructure:"DEFAULT_HALF_LIFE"`
	MaxSamples        int     `mapstructure:"MAX_SAMPLES"`
	SimulationWorkers int     `mapstructure:"SIMULATION_WORKERS"`

	// Optimization
	OptimizationWorkers int     `mapstructure:"OPTIMIZATION_WORKERS"`
	DefaultIterations   int     `mapstructure:"DEFAULT_ITERATIONS"`
	AnnealStart         float64 `mapstructure:"ANNEAL_START"`
	AnnealDecay         float64 `mapstructure:"ANNEAL_DECAY"`
}

// LoadConfig reads .env from the working directory or its parent, then the
// environment, on top of the defaults below
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "1h")
	v.SetDefault("LEAGUE_FIXTURE_PATH", "data/league.json")
	v.SetDefault("SEASON_START", "") // empty means take it from the league fixture
	v.SetDefault("WEEK_LENGTH_DAYS", 0)
	v.SetDefault("LEAGUE_RELOAD_SCHEDULE", "")
	v.SetDefault("DEFAULT_NUM_DAYS", 30)
	v.SetDefault("DEFAULT_NUM_SAMPLES", 10000)
	v.SetDefault("DEFAULT_HALF_LIFE", 14.0)
	v.SetDefault("MAX_SAMPLES", 100000)
	v.SetDefault("SIMULATION_WORKERS", 4)
	v.SetDefault("OPTIMIZATION_WORKERS", 4)
	v.SetDefault("DEFAULT_ITERATIONS", 100)
	v.SetDefault("ANNEAL_START", 0.2)
	v.SetDefault("ANNEAL_DECAY", 0.99)

	// Read from environment
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the simulator or optimizer would refuse later
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DefaultNumDays <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_NUM_DAYS must be positive, got %d", c.DefaultNumDays))
	}
	if c.DefaultNumSamples <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_NUM_SAMPLES must be positive, got %d", c.DefaultNumSamples))
	}
	if c.MaxSamples < c.DefaultNumSamples {
		errs = append(errs, fmt.Errorf("MAX_SAMPLES (%d) is below DEFAULT_NUM_SAMPLES (%d)", c.MaxSamples, c.DefaultNumSamples))
	}
	if c.DefaultHalfLife <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_HALF_LIFE must be positive, got %g", c.DefaultHalfLife))
	}
	if c.DefaultIterations <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_ITERATIONS must be positive, got %d", c.DefaultIterations))
	}
	if c.AnnealDecay < 0 || c.AnnealDecay >= 1 {
		errs = append(errs, fmt.Errorf("ANNEAL_DECAY must be in [0, 1), got %g", c.AnnealDecay))
	}
	if c.WeekLengthDays < 0 {
		errs = append(errs, fmt.Errorf("WEEK_LENGTH_DAYS must not be negative, got %d", c.WeekLengthDays))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst))
	}
	if c.LeagueReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.LeagueReloadSchedule); err != nil {
			errs = append(errs, fmt.Errorf("LEAGUE_RELOAD_SCHEDULE is not a cron expression: %w", err))
		}
	}
	if c.SeasonStart != "" {
		if _, err := c.SeasonStartDate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SeasonStartDate parses SEASON_START. The zero time means unset.
func (c *Config) SeasonStartDate() (time.Time, error) {
	if c.SeasonStart == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", c.SeasonStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("SEASON_START must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// RateLimitEnabled reports whether compute endpoints are throttled
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// CacheEnabled reports whether a Redis URL was configured
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
