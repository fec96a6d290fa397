package auth

import (
	"context"

	"community-events/internal/domain"
)

type SessionUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Image string      `json:"image"`
	Role  domain.Role `json:"role"`
}

func UserOf(u domain.User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.EmailOrEmpty(), Image: u.Image, Role: u.Role}
}

// Session = Anonymous | Authenticated
type Session interface{ isSession() }

type Anonymous struct{}

type Authenticated struct{ User SessionUser }

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// Authorize 守卫判定：无会话或角色不符都返回 ErrUnauthorized
func Authorize(s Session, role domain.Role) (SessionUser, error) {
	switch v := s.(type) {
	case Authenticated:
		if role != "" && v.User.Role != role {
			return SessionUser{}, domain.ErrUnauthorized
		}
		return v.User, nil
	default:
		return SessionUser{}, domain.ErrUnauthorized
	}
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok && s != nil {
		return s
	}
	return Anonymous{}
}
