package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"community-events/internal/core/auth"
)

// 敏感字段 key（query 中统一按 key 脱敏）；OAuth 回调的 code/state 同样脱敏
var sensitiveKeys = map[string]struct{}{
	"token": {}, "authorization": {}, "secret": {}, "client_secret": {},
	"access_token": {}, "code": {}, "state": {},
}

func mask(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessLog 放在 Session 之后才能记录 uid；5xx 用 Error，4xx 用 Warn
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		lvl := zapcore.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			lvl = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			lvl = zapcore.WarnLevel
		}
		uid := ""
		if a, ok := auth.FromContext(c.Request.Context()).(auth.Authenticated); ok {
			uid = a.User.ID
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if ce := l.Check(lvl, "HTTP"); ce != nil {
			ce.Write(
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.ClientIP()),
				zap.String("uid", uid),
				zap.String("ua", c.Request.UserAgent()),
				zap.Any("query", mask(c.Request.URL.Query())),
				zap.Int("size", c.Writer.Size()),
			)
		}
	}
}
