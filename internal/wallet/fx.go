package wallet

import (
	"github.com/showgrid/showgrid/internal/wallet/repository"
	"github.com/showgrid/showgrid/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
