package main

import (
	"github.com/bdecent/avatarhub/internal/clock"
	"github.com/bdecent/avatarhub/internal/config"
	"github.com/bdecent/avatarhub/internal/logger"
	"github.com/bdecent/avatarhub/internal/migration"
	"github.com/bdecent/avatarhub/internal/server"
	"github.com/bdecent/avatarhub/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
