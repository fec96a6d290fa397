package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-events/internal/core/auth"
	"community-events/internal/core/config"
	"community-events/internal/domain"
	"community-events/internal/service"
	"community-events/internal/transport/http/ez"
)

const stateCookie = "oauth_state"

// IdentityProvider GitHub OAuth 的最小接口，测试里替换成假实现
type IdentityProvider interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubProfile, error)
}

type AuthHandler struct {
	idp      IdentityProvider
	users    *service.UserService
	jwt      *auth.JWTer
	cookie   config.JWT
	frontend string
	log      *zap.Logger
}

func NewAuthHandler(idp IdentityProvider, u *service.UserService, j *auth.JWTer, cookie config.JWT, frontend string, l *zap.Logger) *AuthHandler {
	if cookie.CookieName == "" {
		cookie.CookieName = "session"
	}
	return &AuthHandler{idp: idp, users: u, jwt: j, cookie: cookie, frontend: frontend, log: l}
}

var errSignInDisabled = &domain.Error{Kind: domain.KindNotFound, Reason: "signin_disabled", Msg: "GitHub sign-in is not configured"}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cookie.CookieSecure, true)
}

func (h *AuthHandler) MountRoot(e ez.EZ) {
	ez.Raw(e, http.MethodGet, "/auth/github/login", false, nil, func(c *gin.Context, _ auth.SessionUser) error {
		if !h.idp.Enabled() {
			return errSignInDisabled
		}
		state, err := auth.NewState()
		if err != nil {
			return err
		}
		h.setCookie(c, stateCookie, state, 600)
		c.Redirect(http.StatusFound, h.idp.AuthCodeURL(state))
		return nil
	})

	ez.Raw(e, http.MethodGet, "/auth/github/callback", false, nil, func(c *gin.Context, _ auth.SessionUser) error {
		if !h.idp.Enabled() {
			return errSignInDisabled
		}
		want, _ := c.Cookie(stateCookie)
		if want == "" || c.Query("state") != want || c.Query("code") == "" {
			return domain.ErrUnauthorized
		}
		h.setCookie(c, stateCookie, "", -1)

		p, err := h.idp.Exchange(c.Request.Context(), c.Query("code"))
		if err != nil {
			h.log.Warn("github exchange failed", zap.Error(err))
			return domain.ErrUnauthorized
		}
		u, err := h.users.SyncGitHubProfile(c.Request.Context(), *p)
		if err != nil {
			return err
		}
		tok, err := h.jwt.Issue(auth.UserOf(*u))
		if err != nil {
			return err
		}
		h.setCookie(c, h.cookie.CookieName, tok, int(h.jwt.TTL.Seconds()))
		h.log.Info("signed in", zap.String("uid", u.ID), zap.String("login", p.Login))
		c.Redirect(http.StatusFound, h.frontend)
		return nil
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (gin.H, error) {
			h.setCookie(c, h.cookie.CookieName, "", -1)
			return gin.H{"signedOut": true}, nil
		},
	})

	// 前端用来判断登录态；匿名时 user 为 null
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/auth/session",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (gin.H, error) {
			if a, ok := auth.FromContext(c.Request.Context()).(auth.Authenticated); ok {
				return gin.H{"user": a.User}, nil
			}
			return gin.H{"user": nil}, nil
		},
	})
}
