package devicepackage

import (
	"github.com/orbitlinklabs/orbitlink/internal/devicepackage/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("devicepackage",
	fx.Provide(repository.Provide),
)
