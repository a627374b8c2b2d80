package pricingobject

import (
	"github.com/smallbiznis/scrooge/internal/pricingobject/repository"
	"github.com/smallbiznis/scrooge/internal/pricingobject/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingobject.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
