package main

import (
	"context"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"community-events/internal/app"
	"community-events/internal/core/config"
	"community-events/internal/core/server"
	"community-events/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	a, err := app.Base(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap:", err)
		os.Exit(1)
	}
	defer a.Close()

	deps, err := a.Deps(context.Background())
	if err != nil {
		a.Log.Fatal("wire dependencies", zap.Error(err))
	}

	// 路由（后台端）
	r := router.NewAdminEngine(deps)
	ad := a.Cfg.App.Admin
	srv := server.FromConfig(config.HTTP{
		Host: ad.Host, Port: ad.Port,
		ReadTimeoutSec: 5, WriteTimeoutSec: 10, IdleTimeoutSec: 60,
	}, r)

	base := server.HumanURL(ad.Host, ad.Port)
	a.Log.Info("admin api starting",
		zap.String("addr", srv.Addr),
		zap.String("open", base),
		zap.String("health", base+"/health"),
		zap.String("admin_v1", base+"/admin/v1"),
	)
	server.Run(srv, a.Log, "admin api")
}
