package lock

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/scrooge/internal/clock"
	"github.com/smallbiznis/scrooge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) Locker {
	log = log.Named("lock")
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-process run lock")
		return NewLocalLocker(clk)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("using redis run lock", zap.String("addr", cfg.RedisAddr))
	return NewRedisLocker(client)
}

var Module = fx.Module("lock",
	fx.Provide(provide),
)
