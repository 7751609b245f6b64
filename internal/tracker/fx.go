package tracker

import (
	"github.com/orbitlinklabs/orbitlink/internal/tracker/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tracker",
	fx.Provide(repository.Provide),
)
