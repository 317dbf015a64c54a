package subscription

import (
	"github.com/showgrid/showgrid/internal/subscription/repository"
	"github.com/showgrid/showgrid/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
