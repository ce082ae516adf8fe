package room

import (
	"github.com/smallbiznis/lodgia/internal/room/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("room",
	fx.Provide(repository.Provide),
)
