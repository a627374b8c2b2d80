package db

import (
	"fmt"
	"strings"
	"time"
)

// Config selects the dialect and tunes the connection pool. Zero pool values
// keep database/sql defaults.
type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
}

// Validate rejects unknown dialects and negative pool settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Type) {
	case TypePostgres, TypeMySQL, TypeSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q", c.Type)
	}
	if c.MaxIdleConn < 0 || c.MaxOpenConn < 0 {
		return fmt.Errorf("database pool sizes must not be negative")
	}
	if c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0 || c.SlowThreshold < 0 {
		return fmt.Errorf("database durations must not be negative")
	}
	return nil
}

// Redacted is safe to log: the password never leaves this package.
func (c Config) Redacted() string {
	if strings.EqualFold(c.Type, TypeSQLite) {
		return fmt.Sprintf("sqlite:%s", c.Name)
	}
	return fmt.Sprintf("%s://%s@%s:%s/%s", strings.ToLower(c.Type), c.User, c.Host, c.Port, c.Name)
}
