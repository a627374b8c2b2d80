package serviceregistry

import (
	"github.com/smallbiznis/scrooge/internal/serviceregistry/repository"
	"github.com/smallbiznis/scrooge/internal/serviceregistry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("serviceregistry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
