package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	"community-events/internal/service"
	"community-events/internal/transport/http/ez"
)

// AdminHandler 管理端：用户列表与角色调整
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(u *service.UserService) *AdminHandler { return &AdminHandler{users: u} }

type listUsersQuery struct {
	Offset int    `form:"offset" binding:"gte=0"`
	Limit  int    `form:"limit" binding:"gte=0,lte=100"`
	Q      string `form:"q" binding:"max=64"`
}

type setRoleBody struct {
	Role domain.Role `json:"role" binding:"required,oneof=user admin"`
}

func (h *AdminHandler) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[listUsersQuery, *domain.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *listUsersQuery) (*domain.Page[domain.User], error) {
			return h.users.List(c.Request.Context(), in.Offset, in.Limit, in.Q)
		},
	})

	ez.RegisterAction(e, ez.Action[setRoleBody, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: ez.BindJSON,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *setRoleBody) (*domain.User, error) {
			return h.users.SetRole(c.Request.Context(), c.Param("id"), in.Role)
		},
	})
}
