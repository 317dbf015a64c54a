package coupon

import (
	"github.com/showgrid/showgrid/internal/coupon/repository"
	"github.com/showgrid/showgrid/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
