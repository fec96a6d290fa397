package domain

import "errors"

// Kind 错误分类（传输层据此映射 HTTP 状态）
type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthorized
	KindNotFound
	KindInvalidState
	KindValidation
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind   Kind
	Reason string // 机器可读，如 event_full
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同一 Kind + Reason 视为同一错误，便于 errors.Is 对哨兵比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Reason: "unauthorized", Msg: "Unauthorized"}

	ErrEventNotFound       = &Error{Kind: KindNotFound, Reason: "event_not_found", Msg: "Event not found"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Reason: "user_not_found", Msg: "User not found"}
	ErrCertificateNotFound = &Error{Kind: KindNotFound, Reason: "certificate_not_found", Msg: "Certificate not found"}
	ErrImageNotFound       = &Error{Kind: KindNotFound, Reason: "image_not_found", Msg: "Image not found"}

	ErrAlreadyActive     = &Error{Kind: KindInvalidState, Reason: "already_active", Msg: "Event already marked as active"}
	ErrAlreadyDone       = &Error{Kind: KindInvalidState, Reason: "already_done", Msg: "Event already marked as done"}
	ErrNotActive         = &Error{Kind: KindInvalidState, Reason: "not_active", Msg: "Event is not active"}
	ErrEventIsDone       = &Error{Kind: KindInvalidState, Reason: "event_done", Msg: "Event is done"}
	ErrEventFull         = &Error{Kind: KindInvalidState, Reason: "event_full", Msg: "Event is full"}
	ErrAlreadyRegistered = &Error{Kind: KindInvalidState, Reason: "already_registered", Msg: "Already participant"}
)

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Reason: "invalid_input", Msg: msg}
}

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Reason: "storage_error", Msg: msg, Err: err}
}

// KindOf 非 *Error 一律视为 Unexpected
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}
