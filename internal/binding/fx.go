package binding

import (
	"github.com/orbitlinklabs/orbitlink/internal/binding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("binding",
	fx.Provide(service.NewService),
)
