package report

import (
	"github.com/showgrid/showgrid/internal/report/repository"
	"github.com/showgrid/showgrid/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
