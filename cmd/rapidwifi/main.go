package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/rapidwifi/zone/internal/alert"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/logger"
	"github.com/rapidwifi/zone/internal/metrics"
	"github.com/rapidwifi/zone/internal/migration"
	"github.com/rapidwifi/zone/internal/router"
	"github.com/rapidwifi/zone/internal/server"
	"github.com/rapidwifi/zone/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		router.Module,
		server.Module,
		alert.Module,
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
