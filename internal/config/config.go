package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Log      LogConfig
	Journal  JournalConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers       []string
	JournalTopic  string
	ConsumerGroup string
	Enabled       bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	CacheTTL   time.Duration
	StaleAfter time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Console    bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// JournalConfig holds journal behaviour settings
type JournalConfig struct {
	Timezone              string
	DefaultPerTradeRisk   decimal.Decimal
	DefaultDailyLossLimit decimal.Decimal
	TopSymbols            int
	RecentTrades          int
	DraftTTL              time.Duration
	MigrationsPath        string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first; variables already set take precedence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8081"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "postgres"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "trader"),
			Password: getEnv("DB_PASSWORD", "trader5"),
			DBName:   getEnv("DB_NAME", "trademind"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:       parseBrokers(getEnv("KAFKA_BROKERS", "localhost:19092")),
			JournalTopic:  getEnv("KAFKA_JOURNAL_TOPIC", "trademind.journal"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "trademind"),
			Enabled:       getEnvBool("KAFKA_ENABLED", true),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			CacheTTL:   getEnvDuration("CACHE_TTL", 10*time.Minute),
			StaleAfter: getEnvDuration("CACHE_STALE_AFTER", 30*time.Second),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Console:    getEnvBool("LOG_CONSOLE", false),
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
		Journal: JournalConfig{
			Timezone:              getEnv("JOURNAL_TIMEZONE", "Asia/Kolkata"),
			DefaultPerTradeRisk:   getEnvDecimal("DEFAULT_PER_TRADE_RISK", decimal.NewFromInt(5000)),
			DefaultDailyLossLimit: getEnvDecimal("DEFAULT_DAILY_LOSS_LIMIT", decimal.NewFromInt(10000)),
			TopSymbols:            getEnvInt("JOURNAL_TOP_SYMBOLS", 8),
			RecentTrades:          getEnvInt("JOURNAL_RECENT_TRADES", 5),
			DraftTTL:              getEnvDuration("GUARDIAN_DRAFT_TTL", 2*time.Hour),
			MigrationsPath:        getEnv("MIGRATIONS_PATH", "file://./db/migrations"),
		},
	}
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if !c.Journal.DefaultPerTradeRisk.IsPositive() {
		return fmt.Errorf("DEFAULT_PER_TRADE_RISK must be greater than zero, got %s", c.Journal.DefaultPerTradeRisk)
	}
	if !c.Journal.DefaultDailyLossLimit.IsPositive() {
		return fmt.Errorf("DEFAULT_DAILY_LOSS_LIMIT must be greater than zero, got %s", c.Journal.DefaultDailyLossLimit)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must list at least one broker")
	}
	if c.Redis.StaleAfter > c.Redis.CacheTTL {
		return fmt.Errorf("CACHE_STALE_AFTER (%s) must not exceed CACHE_TTL (%s)", c.Redis.StaleAfter, c.Redis.CacheTTL)
	}
	return nil
}

// Location returns the time zone used to assign trades to calendar dates
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid JOURNAL_TIMEZONE %q: %w", c.Journal.Timezone, err)
	}
	return loc, nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
