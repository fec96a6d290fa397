package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	resp "community-events/internal/transport/http/response"
)

// UserLoader 按 id 取用户，不存在返回 nil, nil；repo.UserRepo 满足
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Session 从 Bearer 头或会话 cookie 解析 JWT，结果（含 Anonymous）放进请求 context。
// JWT 只证明身份；角色和资料每次按 uid 从库里取，改角色或删用户对旧 token 立即生效。
func Session(j *auth.JWTer, cookieName string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := ""
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			tok = strings.TrimPrefix(ah, "Bearer ")
		} else if cookieName != "" {
			tok, _ = c.Cookie(cookieName)
		}
		var s auth.Session = auth.Anonymous{}
		if tok != "" {
			if claimed, ok := j.Session(tok).(auth.Authenticated); ok {
				u, err := users.FindByID(c.Request.Context(), claimed.User.ID)
				if err != nil {
					_ = c.Error(err)
					c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "", "session_lookup"))
					return
				}
				if u != nil {
					s = auth.Authenticated{User: auth.UserOf(*u)}
				}
			}
		}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), s))
		c.Next()
	}
}
