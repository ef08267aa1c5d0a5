package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "data/league.json", cfg.LeagueFixturePath)
	assert.Equal(t, 30, cfg.DefaultNumDays)
	assert.Equal(t, 14.0, cfg.DefaultHalfLife)
	assert.Equal(t, 0.99, cfg.AnnealDecay)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CorsOrigins)
	assert.False(t, cfg.RateLimitEnabled())
	assert.Empty(t, cfg.LeagueReloadSchedule)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("DEFAULT_NUM_SAMPLES", "2500")
	t.Setenv("SEASON_START", "2023-10-24")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LEAGUE_RELOAD_SCHEDULE", "0 6 * * *")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2500, cfg.DefaultNumSamples)
	assert.True(t, cfg.RateLimitEnabled())
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, "0 6 * * *", cfg.LeagueReloadSchedule)

	start, err := cfg.SeasonStartDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC), start)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("ANNEAL_DECAY", "1.5")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "ANNEAL_DECAY")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:              "8080",
			DefaultNumDays:    30,
			DefaultNumSamples: 1000,
			MaxSamples:        5000,
			DefaultHalfLife:   14,
			DefaultIterations: 100,
			AnnealDecay:       0.9,
		}
	}
	c := valid()
	require.NoError(t, c.Validate())

	tests := map[string]func(*Config){
		"DEFAULT_NUM_DAYS":       func(c *Config) { c.DefaultNumDays = 0 },
		"MAX_SAMPLES":            func(c *Config) { c.MaxSamples = 10 },
		"DEFAULT_HALF_LIFE":      func(c *Config) { c.DefaultHalfLife = -1 },
		"DEFAULT_ITERATIONS":     func(c *Config) { c.DefaultIterations = 0 },
		"SEASON_START":           func(c *Config) { c.SeasonStart = "10/24/2023" },
		"WEEK_LENGTH_DAYS":       func(c *Config) { c.WeekLengthDays = -7 },
		"DEFAULT_NUM_SAMPLES":    func(c *Config) { c.DefaultNumSamples = -5 },
		"RATE_LIMIT_RPS":         func(c *Config) { c.RateLimitRPS = -1 },
		"RATE_LIMIT_BURST":       func(c *Config) { c.RateLimitRPS, c.RateLimitBurst = 1, 0 },
		"LEAGUE_RELOAD_SCHEDULE": func(c *Config) { c.LeagueReloadSchedule = "every tuesday" },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.ErrorContains(t, c.Validate(), field)
		})
	}
}
