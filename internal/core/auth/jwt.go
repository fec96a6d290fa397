package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"community-events/internal/domain"
)

type Claims struct {
	UID   string      `json:"uid"`
	Role  domain.Role `json:"role"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty"`
	Image string      `json:"image,omitempty"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(u SessionUser) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   u.ID,
		Role:  u.Role,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.UID != "" {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Session 解析 token；任何失败都退化为 Anonymous
func (j *JWTer) Session(tokenStr string) Session {
	if tokenStr == "" {
		return Anonymous{}
	}
	c, err := j.Parse(tokenStr)
	if err != nil {
		return Anonymous{}
	}
	return Authenticated{User: SessionUser{ID: c.UID, Role: c.Role, Name: c.Name, Email: c.Email, Image: c.Image}}
}
