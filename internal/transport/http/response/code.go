package response

import (
	"errors"
	"net/http"

	"community-events/internal/domain"
)

// 业务码直接沿用 HTTP 状态
const (
	CodeOK              = 0
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeNotFound        = http.StatusNotFound
	CodeTooLarge        = http.StatusRequestEntityTooLarge
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
	CodeTimeout         = http.StatusGatewayTimeout
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeNotFound:        "Not Found",
	CodeTooLarge:        "Request body too large",
	CodeTooManyRequests: "Too many requests",
	CodeServerError:     "Internal Server Error",
	CodeUnavailable:     "Server busy",
	CodeTimeout:         "Timeout",
}

// StatusOf domain.Kind → HTTP 状态
func StatusOf(k domain.Kind) int {
	switch k {
	case domain.KindUnauthorized:
		return CodeUnauthorized
	case domain.KindNotFound:
		return CodeNotFound
	case domain.KindInvalidState, domain.KindValidation:
		return CodeBadRequest
	default:
		return CodeServerError
	}
}

// FromError 非预期错误只返回通用文案，细节留给日志
func FromError(err error) (int, Resp) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindUnexpected {
		return CodeServerError, Error(CodeServerError, "", "unexpected")
	}
	status := StatusOf(de.Kind)
	msg := de.Msg
	if de.Kind == domain.KindStorage {
		msg = "Storage error"
	}
	return status, Error(status, msg, de.Reason)
}
