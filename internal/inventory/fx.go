package inventory

import (
	"github.com/smallbiznis/scrooge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, log *zap.Logger) (*Inventory, error) {
	if cfg.InventoryFeed == "" {
		log.Named("inventory").Warn("INVENTORY_FEED not set, assets will be deferred")
		return Empty(), nil
	}
	return Load(cfg.InventoryFeed)
}

var Module = fx.Module("inventory",
	fx.Provide(provide),
)
