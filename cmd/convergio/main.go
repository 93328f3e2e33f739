package main

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/logger"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/migration"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/server"
	"github.com/Pathan99z/rc-convergio-b-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
