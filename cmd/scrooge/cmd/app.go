package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/clock"
	"github.com/smallbiznis/scrooge/internal/config"
	"github.com/smallbiznis/scrooge/internal/dailycost"
	"github.com/smallbiznis/scrooge/internal/logger"
	"github.com/smallbiznis/scrooge/internal/pricingobject"
	"github.com/smallbiznis/scrooge/internal/serviceregistry"
	"github.com/smallbiznis/scrooge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// coreOptions wires infrastructure and the domain services shared by every command.
func coreOptions() []fx.Option {
	return []fx.Option{
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),

		// Core Infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		serviceregistry.Module,
		pricingobject.Module,
		dailycost.Module,
	}
}

// RegisterSnowflake builds the ID node for this process from NODE_ID.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}

// startApp builds the core application plus opts and starts it. Callers stop it with stopApp.
func startApp(ctx context.Context, opts ...fx.Option) (*fx.App, error) {
	app := fx.New(append(coreOptions(), opts...)...)
	if err := app.Err(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}
	return app, nil
}

func stopApp(app *fx.App) {
	ctx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	_ = app.Stop(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
