package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Journal.Timezone)
	assert.True(t, cfg.Journal.DefaultPerTradeRisk.Equal(decimal.NewFromInt(5000)))
	assert.True(t, cfg.Journal.DefaultDailyLossLimit.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 8, cfg.Journal.TopSymbols)
	assert.Equal(t, 5, cfg.Journal.RecentTrades)
	assert.Equal(t, 30*time.Second, cfg.Redis.StaleAfter)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JOURNAL_TIMEZONE", "UTC")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("DEFAULT_PER_TRADE_RISK", "2500.50")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Journal.DefaultPerTradeRisk.Equal(decimal.RequireFromString("2500.50")))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown timezone", func(c *Config) { c.Journal.Timezone = "Mars/Olympus" }},
		{"zero per-trade risk", func(c *Config) { c.Journal.DefaultPerTradeRisk = decimal.Zero }},
		{"negative daily limit", func(c *Config) { c.Journal.DefaultDailyLossLimit = decimal.NewFromInt(-1) }},
		{"no brokers", func(c *Config) { c.Kafka.Brokers = nil }},
		{"stale after ttl", func(c *Config) { c.Redis.StaleAfter = time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_NoBrokersWhenKafkaDisabled(t *testing.T) {
	cfg := Load()
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.ConnectionString())
}
