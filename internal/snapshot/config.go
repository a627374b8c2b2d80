package snapshot

import (
	"time"

	"github.com/smallbiznis/scrooge/internal/config"
)

// Config controls the daily snapshot job and its worker loop.
type Config struct {
	Enabled      bool
	RunInterval  time.Duration
	BatchSize    int
	BackfillDays int
	LockTTL      time.Duration
	RunTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		RunInterval: time.Hour,
		BatchSize:   200,
		LockTTL:     30 * time.Minute,
		RunTimeout:  25 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:      cfg.Snapshot.Enabled,
		RunInterval:  cfg.Snapshot.RunInterval,
		BatchSize:    cfg.Snapshot.BatchSize,
		BackfillDays: cfg.Snapshot.BackfillDays,
		LockTTL:      cfg.Snapshot.LockTTL,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.RunTimeout <= 0 || c.RunTimeout > c.LockTTL {
		// the lease must outlive the run
		c.RunTimeout = c.LockTTL - c.LockTTL/6
	}
	return c
}
