package plan

import "go.uber.org/fx"

var Module = fx.Module("plan.repository",
	fx.Provide(NewRepository),
)
