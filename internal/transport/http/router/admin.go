package router

import (
	"github.com/gin-gonic/gin"

	"community-events/internal/core/server"
	"community-events/internal/transport/http/ez"
	"community-events/internal/transport/http/handler"
)

// NewAdminEngine 管理端单独监听（默认只绑 127.0.0.1），接口统一要求 admin
func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, nil)
	d.common(r, 1<<20)

	reg := NewRegistry(handler.NewAdminHandler(d.Users))
	reg.MountAdmin(ez.New(r.Group("/admin/v1"), d.Log))
	return r
}
