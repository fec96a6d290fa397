package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-events/internal/core/auth"
	"community-events/internal/core/config"
	"community-events/internal/core/server"
	"community-events/internal/service"
	"community-events/internal/storage"
	"community-events/internal/transport/http/ez"
	"community-events/internal/transport/http/handler"
	mdw "community-events/internal/transport/http/middleware"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log      *zap.Logger
	Cfg      *config.Config
	JWT      *auth.JWTer
	GitHub   handler.IdentityProvider
	Store    storage.Store
	Events   *service.EventService
	Regs     *service.RegistrationService
	Certs    *service.CertificateService
	Users    *service.UserService
	Sessions mdw.UserLoader // 会话按 uid 取当前用户
	Timeout  time.Duration  // 默认 10s
	MaxConns int64          // 默认 300
}

func (d Deps) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 10 * time.Second
}

func (d Deps) maxConns() int64 {
	if d.MaxConns > 0 {
		return d.MaxConns
	}
	return 300
}

func (d Deps) common(r *gin.Engine, maxBody int64) {
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(20, 40, 10*time.Minute),
		mdw.ConcurrencyLimit(d.maxConns()),
		mdw.MaxBodyBytes(maxBody),
		mdw.Timeout(d.timeout()),
		mdw.Metrics(),
		mdw.Session(d.JWT, d.Cfg.JWT.CookieName, d.Sessions),
		mdw.AccessLog(d.Log),
	)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.Cfg.App.HTTP.CORSOrigins)
	d.common(r, int64(max(1, d.Cfg.App.HTTP.MaxBodyMB))<<20)
	r.GET("/metrics", mdw.MetricsHandler())

	mods := []any{
		handler.NewEventHandler(d.Events, d.Regs),
		handler.NewUserHandler(d.Users, d.Regs, d.Certs),
		handler.NewCertificateHandler(d.Certs),
		handler.NewAuthHandler(d.GitHub, d.Users, d.JWT, d.Cfg.JWT, d.Cfg.App.Frontend, d.Log),
	}
	if local, ok := d.Store.(*storage.Local); ok {
		mods = append(mods, handler.NewImageHandler(local))
	}
	reg := NewRegistry(mods...)

	reg.MountRoot(ez.New(&r.RouterGroup, d.Log))
	reg.MountAPI(ez.New(r.Group("/api/v1"), d.Log))
	return r
}
