package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	"community-events/internal/service"
	"community-events/internal/transport/http/ez"
)

// UserHandler 当前登录用户相关 + 主讲人候选
type UserHandler struct {
	users *service.UserService
	regs  *service.RegistrationService
	certs *service.CertificateService
}

func NewUserHandler(u *service.UserService, r *service.RegistrationService, c *service.CertificateService) *UserHandler {
	return &UserHandler{users: u, regs: r, certs: c}
}

func (h *UserHandler) Priority() int { return 20 }

func (h *UserHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), u.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.EventDetail]{
		Method: http.MethodGet,
		Path:   "/me/registrations",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) ([]domain.EventDetail, error) {
			return h.regs.Registrations(c.Request.Context(), u.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.CertificateView]{
		Method: http.MethodGet,
		Path:   "/me/certificates",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) ([]domain.CertificateView, error) {
			return h.certs.ForUser(c.Request.Context(), u.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/presenters",
		Binder: ez.BindNone,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) ([]domain.User, error) {
			return h.users.Presenters(c.Request.Context())
		},
	})
}
