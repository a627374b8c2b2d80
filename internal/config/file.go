package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// loadFile overlays values present in a YAML/TOML/JSON config file onto cfg.
// Keys absent from the file keep their current value.
func loadFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	setString(v, "app.name", &cfg.AppName)
	setString(v, "app.environment", &cfg.Environment)
	setString(v, "log.level", &cfg.LogLevel)
	setString(v, "log.output", &cfg.LogOutput)
	setInt64(v, "app.node_id", &cfg.NodeID)

	setString(v, "database.type", &cfg.DB.Type)
	setString(v, "database.host", &cfg.DB.Host)
	setString(v, "database.port", &cfg.DB.Port)
	setString(v, "database.name", &cfg.DB.Name)
	setString(v, "database.user", &cfg.DB.User)
	setString(v, "database.password", &cfg.DB.Password)
	setString(v, "database.sslmode", &cfg.DB.SSLMode)
	setInt(v, "database.max_idle_conn", &cfg.DB.MaxIdleConn)
	setInt(v, "database.max_open_conn", &cfg.DB.MaxOpenConn)
	if v.IsSet("database.conn_max_lifetime") {
		cfg.DB.ConnMaxLifetime = v.GetDuration("database.conn_max_lifetime")
	}

	if v.IsSet("snapshot.enabled") {
		cfg.Snapshot.Enabled = v.GetBool("snapshot.enabled")
	}
	if v.IsSet("snapshot.run_interval") {
		cfg.Snapshot.RunInterval = v.GetDuration("snapshot.run_interval")
	}
	setInt(v, "snapshot.batch_size", &cfg.Snapshot.BatchSize)
	setInt(v, "snapshot.backfill_days", &cfg.Snapshot.BackfillDays)
	if v.IsSet("snapshot.lock_ttl") {
		cfg.Snapshot.LockTTL = v.GetDuration("snapshot.lock_ttl")
	}

	setString(v, "inventory.feed", &cfg.InventoryFeed)
	setString(v, "metrics.addr", &cfg.MetricsAddr)
	setString(v, "redis.addr", &cfg.RedisAddr)
	setString(v, "redis.password", &cfg.RedisPassword)
	setInt(v, "redis.db", &cfg.RedisDB)

	return nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setInt64(v *viper.Viper, key string, dst *int64) {
	if v.IsSet(key) {
		*dst = v.GetInt64(key)
	}
}
