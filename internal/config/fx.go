package config

import (
	"github.com/smallbiznis/scrooge/internal/logger"
	"github.com/smallbiznis/scrooge/pkg/db"
	"go.uber.org/fx"
)

func provideDBConfig(cfg Config) db.Config {
	return cfg.DB
}

func provideLoggerOptions(cfg Config) logger.Options {
	return logger.Options{
		Level:       cfg.LogLevel,
		Output:      cfg.LogOutput,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(provideDBConfig),
	fx.Provide(provideLoggerOptions),
)
