package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smallbiznis/scrooge/pkg/db"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	LogOutput   string
	NodeID      int64

	DB db.Config

	Snapshot SnapshotConfig

	InventoryFeed string
	MetricsAddr   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SnapshotConfig drives the daily snapshot worker.
type SnapshotConfig struct {
	Enabled      bool
	RunInterval  time.Duration
	BatchSize    int
	BackfillDays int
	LockTTL      time.Duration
}

func defaults() Config {
	return Config{
		AppName:     "scrooge",
		AppVersion:  "0.1.0",
		Environment: "development",
		LogLevel:    "info",
		LogOutput:   "stdout",
		NodeID:      1,
		DB: db.Config{
			Type:            db.TypePostgres,
			Host:            "localhost",
			Port:            "5432",
			Name:            "scrooge",
			User:            "postgres",
			SSLMode:         "disable",
			MaxIdleConn:     5,
			MaxOpenConn:     20,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			SlowThreshold:   200 * time.Millisecond,
		},
		Snapshot: SnapshotConfig{
			Enabled:      true,
			RunInterval:  time.Hour,
			BatchSize:    200,
			BackfillDays: 0,
			LockTTL:      30 * time.Minute,
		},
		MetricsAddr: ":9102",
	}
}

// Load reads .env, then the optional SCROOGE_CONFIG_FILE, then environment variables.
// Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("SCROOGE_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.AppName = getenv("APP_SERVICE", cfg.AppName)
	cfg.AppVersion = getenv("APP_VERSION", cfg.AppVersion)
	cfg.Environment = getenv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogOutput = getenv("LOG_OUTPUT", cfg.LogOutput)
	cfg.NodeID = getenvInt64("NODE_ID", cfg.NodeID)

	cfg.DB.Type = strings.ToLower(getenv("DATABASE_TYPE", cfg.DB.Type))
	cfg.DB.Host = getenv("DATABASE_HOST", cfg.DB.Host)
	cfg.DB.Port = getenv("DATABASE_PORT", cfg.DB.Port)
	cfg.DB.Name = getenv("DATABASE_NAME", cfg.DB.Name)
	cfg.DB.User = getenv("DATABASE_USER", cfg.DB.User)
	cfg.DB.Password = getenv("DATABASE_PASSWORD", cfg.DB.Password)
	cfg.DB.SSLMode = getenv("DATABASE_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.MaxIdleConn = getenvInt("DATABASE_MAX_IDLE_CONN", cfg.DB.MaxIdleConn)
	cfg.DB.MaxOpenConn = getenvInt("DATABASE_MAX_OPEN_CONN", cfg.DB.MaxOpenConn)
	cfg.DB.ConnMaxLifetime = getenvDuration("DATABASE_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime)
	cfg.DB.ConnMaxIdleTime = getenvDuration("DATABASE_CONN_MAX_IDLE_TIME", cfg.DB.ConnMaxIdleTime)
	cfg.DB.SlowThreshold = getenvDuration("DATABASE_SLOW_THRESHOLD", cfg.DB.SlowThreshold)

	cfg.Snapshot.Enabled = getenvBool("SNAPSHOT_ENABLED", cfg.Snapshot.Enabled)
	cfg.Snapshot.RunInterval = getenvDuration("SNAPSHOT_RUN_INTERVAL", cfg.Snapshot.RunInterval)
	cfg.Snapshot.BatchSize = getenvInt("SNAPSHOT_BATCH_SIZE", cfg.Snapshot.BatchSize)
	cfg.Snapshot.BackfillDays = getenvInt("SNAPSHOT_BACKFILL_DAYS", cfg.Snapshot.BackfillDays)
	cfg.Snapshot.LockTTL = getenvDuration("SNAPSHOT_LOCK_TTL", cfg.Snapshot.LockTTL)

	cfg.InventoryFeed = strings.TrimSpace(getenv("INVENTORY_FEED", cfg.InventoryFeed))
	cfg.MetricsAddr = strings.TrimSpace(getenv("METRICS_ADDR", cfg.MetricsAddr))
	cfg.RedisAddr = strings.TrimSpace(getenv("REDIS_ADDR", cfg.RedisAddr))
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getenvInt("REDIS_DB", cfg.RedisDB)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}
	// snowflake reserves 10 bits for the node
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("NODE_ID must be within 0..1023, got %d", c.NodeID)
	}
	if c.Snapshot.BackfillDays < 0 {
		return fmt.Errorf("SNAPSHOT_BACKFILL_DAYS must not be negative")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	return int(getenvInt64(key, int64(def)))
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
