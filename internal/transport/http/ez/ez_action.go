// Package ez 一行注册带守卫的动作接口：会话检查 → 绑定 → 执行 → 统一错误映射
package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	mdw "community-events/internal/transport/http/middleware"
	resp "community-events/internal/transport/http/response"
	"community-events/internal/transport/http/validation"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	validation.Setup()
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart / urlencoded 表单
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string        // "GET" | "POST" | "PUT" | "DELETE"
	Path    string        // 例："/events/:id/done"
	Binder  Binder        // 绑定方式
	Auth    bool          // 是否要求登录
	Roles   []domain.Role // 限定角色（任一满足即可），非空时隐含 Auth
	Handler func(c *gin.Context, u auth.SessionUser, in *I) (O, error)
}

// Guard 无会话或角色不符都是 401；不要求登录时返回零值用户
func Guard(c *gin.Context, needAuth bool, roles []domain.Role) (auth.SessionUser, error) {
	s := auth.FromContext(c.Request.Context())
	if len(roles) == 0 {
		if !needAuth {
			u, _ := auth.Authorize(s, "")
			return u, nil
		}
		return auth.Authorize(s, "")
	}
	for _, r := range roles {
		if u, err := auth.Authorize(s, r); err == nil {
			return u, nil
		}
	}
	return auth.SessionUser{}, domain.ErrUnauthorized
}

// Fail 统一错误出口；非预期错误带 rid 记日志
func Fail(c *gin.Context, l *zap.Logger, err error) {
	status, body := resp.FromError(err)
	if status >= http.StatusInternalServerError && l != nil {
		l.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

func (e EZ) handle(method, path string, h gin.HandlerFunc) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		e.g.GET(path, h)
	case http.MethodPut:
		e.g.PUT(path, h)
	case http.MethodDelete:
		e.g.DELETE(path, h)
	default: // 默认 POST
		e.g.POST(path, h)
	}
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	e.handle(a.Method, a.Path, func(c *gin.Context) {
		// 1) 守卫
		u, err := Guard(c, a.Auth, a.Roles)
		if err != nil {
			Fail(c, e.log, err)
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			Fail(c, e.log, domain.Validation(validation.Message(bindErr)))
			return
		}

		// 3) 执行 + 4) 错误映射
		out, err := a.Handler(c, u, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	})
}

// Raw 需要自己写响应体（图片、PDF）时使用，守卫与错误映射同 RegisterAction
func Raw(e EZ, method, path string, needAuth bool, roles []domain.Role, h func(c *gin.Context, u auth.SessionUser) error) {
	e.handle(method, path, func(c *gin.Context) {
		u, err := Guard(c, needAuth, roles)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		if err := h(c, u); err != nil {
			Fail(c, e.log, err)
		}
	})
}
