package dailycost

import (
	"github.com/smallbiznis/scrooge/internal/dailycost/repository"
	"github.com/smallbiznis/scrooge/internal/dailycost/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dailycost.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
