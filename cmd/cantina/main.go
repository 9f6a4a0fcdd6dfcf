package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/clock"
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/internal/logger"
	"github.com/smallbiznis/cantina/internal/migration"
	"github.com/smallbiznis/cantina/internal/scheduler"
	"github.com/smallbiznis/cantina/internal/server"
	"github.com/smallbiznis/cantina/pkg/db"
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
		migration.Module,

		// Domain modules and HTTP surface
		server.Module,
		scheduler.Module,
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
