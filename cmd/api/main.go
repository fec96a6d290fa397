package main

import (
	"context"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"community-events/internal/app"
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

	// 路由（用户端）
	r := router.NewAPIEngine(deps)
	h := a.Cfg.App.HTTP
	srv := server.FromConfig(h, r)

	base := server.HumanURL(h.Host, h.Port)
	a.Log.Info("user api starting",
		zap.String("addr", srv.Addr),
		zap.String("open", base),
		zap.String("health", base+"/health"),
		zap.String("api_v1", base+"/api/v1"),
	)
	server.Run(srv, a.Log, "user api")
}
