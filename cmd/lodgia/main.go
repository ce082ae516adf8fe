package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lodgia/internal/audit"
	"github.com/smallbiznis/lodgia/internal/checkout"
	"github.com/smallbiznis/lodgia/internal/clock"
	"github.com/smallbiznis/lodgia/internal/config"
	"github.com/smallbiznis/lodgia/internal/invoice"
	"github.com/smallbiznis/lodgia/internal/logger"
	"github.com/smallbiznis/lodgia/internal/migration"
	obsmetrics "github.com/smallbiznis/lodgia/internal/observability/metrics"
	"github.com/smallbiznis/lodgia/internal/pricing"
	"github.com/smallbiznis/lodgia/internal/receipt"
	"github.com/smallbiznis/lodgia/internal/room"
	"github.com/smallbiznis/lodgia/internal/server"
	"github.com/smallbiznis/lodgia/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,
		migration.Module,

		audit.Module,
		room.Module,
		invoice.Module,
		pricing.Module,
		checkout.Module,
		receipt.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
