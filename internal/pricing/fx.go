package pricing

import (
	"github.com/smallbiznis/lodgia/internal/pricing/repository"
	"github.com/smallbiznis/lodgia/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
