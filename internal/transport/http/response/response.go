package response

type Resp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Data    any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg, reason string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Message: msg, Reason: reason, Data: data}
}

// OK 成功响应
func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], "", data)
}

// Error 失败响应（customMsg 为空时用默认文案）
func Error(code int, customMsg, reason string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, reason, nil)
}
