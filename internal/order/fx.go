package order

import (
	"github.com/orbitlinklabs/orbitlink/internal/order/repository"
	"github.com/orbitlinklabs/orbitlink/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
