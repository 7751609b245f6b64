package asset

import (
	"github.com/orbitlinklabs/orbitlink/internal/asset/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("asset",
	fx.Provide(repository.Provide),
)
