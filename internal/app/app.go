// Package app 三个入口共用的装配：配置 → 日志 → DB → 依赖
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"community-events/internal/certificate"
	"community-events/internal/core/auth"
	"community-events/internal/core/cache"
	"community-events/internal/core/config"
	"community-events/internal/core/database"
	"community-events/internal/core/logger"
	"community-events/internal/repo"
	"community-events/internal/service"
	"community-events/internal/storage"
	"community-events/internal/transport/http/router"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Repos *repo.Repos
	Cache *cache.Cache
	Users *service.UserService

	closers []func()
}

// Close 逆序释放
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Base 只装配 DB 与用户服务，运维命令用
func Base(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, cleanup := logger.New(cfg.Log)
	a := &App{Cfg: cfg, Log: log, closers: []func(){cleanup}}

	db, err := database.NewGorm(database.OptsFrom(cfg.DB, log))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("db open: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	a.Repos = repo.New(db)
	a.Users = service.NewUserService(a.Repos, log)
	return a, nil
}

// Deps 在 Base 之上装配存储、缓存、证书渲染与全部服务
func (a *App) Deps(ctx context.Context) (router.Deps, error) {
	cfg := a.Cfg

	store, err := storage.New(ctx, cfg.Storage, a.Log)
	if err != nil {
		return router.Deps{}, fmt.Errorf("storage: %w", err)
	}
	a.Log.Info("image storage ready", zap.String("mode", cfg.Storage.Mode))

	a.Cache = cache.New(cfg.Redis)
	a.closers = append(a.closers, func() { _ = a.Cache.Close() })
	if err := a.Cache.Ping(ctx); err != nil {
		// redis 不可用时仍可直接回源
		a.Log.Warn("redis unavailable", zap.Error(err))
	}

	assets, err := certificate.LoadAssets(cfg.Certificate)
	if err != nil {
		return router.Deps{}, err
	}
	rd, err := certificate.NewRenderer(cfg.Certificate.Domain, assets)
	if err != nil {
		return router.Deps{}, err
	}

	hashSecret := cfg.Certificate.HashSecret
	if hashSecret == "" {
		hashSecret = cfg.JWT.Secret
	}

	gh := auth.NewGitHubOAuth(cfg.OAuth.GitHub)
	if !gh.Enabled() {
		a.Log.Warn("github oauth not configured, sign-in disabled")
	}

	return router.Deps{
		Log:      a.Log,
		Cfg:      cfg,
		JWT:      &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()},
		GitHub:   gh,
		Store:    store,
		Events:   service.NewEventService(a.Repos, store, a.Cache, hashSecret, a.Log),
		Regs:     service.NewRegistrationService(a.Repos, a.Cache, a.Log),
		Certs:    service.NewCertificateService(a.Repos, rd, hashSecret),
		Users:    a.Users,
		Sessions: a.Repos.Users,
	}, nil
}
