package accessgrant

import (
	"github.com/showgrid/showgrid/internal/accessgrant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("accessgrant",
	fx.Provide(
		repository.NewRepository,
	),
)
