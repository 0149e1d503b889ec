package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	DatabaseURL        string
	RabbitMQURL        string
	RedisSentinelHosts string
	RedisMasterName    string
	RedisUrl           string
	LogLevel           string
	ServiceName        string
	TelemetryEnabled   bool
	SeedDir            string
	MutationQueue      string
	RandomSeed         int64
	DriverConfig       DriverConfig
}

type DriverConfig struct {
	IdleInterval time.Duration `mapstructure:"idle_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// RedisEnabled reports whether any Redis endpoint is configured.
func (c *AppConfig) RedisEnabled() bool {
	return c.RedisUrl != "" || (c.RedisSentinelHosts != "" && c.RedisMasterName != "")
}

func LoadConfig() *AppConfig {
	// use a temporary logger for now
	logger := zap.NewExample().Named("config")

	godotenv.Load()

	config := &AppConfig{
		DatabaseURL:        os.Getenv("DATABASE_URL"), // optional, sessions are not persisted without it
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		RedisSentinelHosts: os.Getenv("REDIS_SENTINEL_HOSTS"),
		RedisMasterName:    os.Getenv("REDIS_MASTER"),
		RedisUrl:           os.Getenv("OVERRIDE_REDIS_URL"), // optional, for local dev
		LogLevel:           os.Getenv("LOG_LEVEL"),
		ServiceName:        os.Getenv("SERVICE_NAME"),
		TelemetryEnabled:   parseBool(os.Getenv("TELEMETRY_ENABLED"), false),
		SeedDir:            os.Getenv("SEED_DIR"),
		MutationQueue:      os.Getenv("MUTATION_QUEUE"),
		RandomSeed:         parseInt64(os.Getenv("RANDOM_SEED"), time.Now().UnixNano()),
		DriverConfig: DriverConfig{
			IdleInterval: parseDuration(os.Getenv("DRIVER_IDLE_INTERVAL"), 10*time.Second),
			BatchSize:    parseInt(os.Getenv("DRIVER_BATCH_SIZE"), 256),
		},
	}

	if config.LogLevel == "" {
		config.LogLevel = "info" // Set default log level
	}
	if config.ServiceName == "" {
		config.ServiceName = "b3flip" // Default service name
	}
	if config.MutationQueue == "" {
		config.MutationQueue = "bitflip_mutations"
	}
	if config.DriverConfig.BatchSize <= 0 {
		config.DriverConfig.BatchSize = 256
	}

	if config.SeedDir == "" {
		logger.Fatal("SEED_DIR environment variable is required")
	}
	if config.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL environment variable is required")
	}

	return config
}

func parseDuration(val string, defaultVal time.Duration) time.Duration {
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(val string, defaultVal int) int {
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func parseInt64(val string, defaultVal int64) int64 {
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func parseBool(val string, defaultVal bool) bool {
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return b
}
