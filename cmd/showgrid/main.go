package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/config"
	"github.com/showgrid/showgrid/internal/logger"
	"github.com/showgrid/showgrid/internal/migration"
	obsmetrics "github.com/showgrid/showgrid/internal/observability/metrics"
	"github.com/showgrid/showgrid/internal/server"
	"github.com/showgrid/showgrid/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,

		// HTTP surface plus every domain module it serves
		server.Module,

		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
