package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/costmgmt/koku/internal/clock"
	"github.com/costmgmt/koku/internal/config"
	"github.com/costmgmt/koku/internal/logger"
	"github.com/costmgmt/koku/internal/manifest"
	"github.com/costmgmt/koku/internal/migration"
	"github.com/costmgmt/koku/internal/provider"
	"github.com/costmgmt/koku/internal/reportdata"
	"github.com/costmgmt/koku/internal/retention"
	"github.com/costmgmt/koku/internal/server"
	"github.com/costmgmt/koku/internal/status"
	"github.com/costmgmt/koku/pkg/db"
	"github.com/costmgmt/koku/pkg/transaction"
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
		transaction.Module,
		migration.Module,

		// Functional domains
		provider.Module,
		manifest.Module,
		reportdata.Module,
		retention.Module,
		status.Module,
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
