package invoice

import (
	"github.com/showgrid/showgrid/internal/invoice/repository"
	"github.com/showgrid/showgrid/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
