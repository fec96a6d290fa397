package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Name     string  `gorm:"size:128" json:"name"`
	Email    *string `gorm:"uniqueIndex;size:191" json:"email"`
	Image    string  `gorm:"size:512" json:"image"`
	Role     Role    `gorm:"size:16;not null;default:user" json:"role"`
	GithubID *string `gorm:"uniqueIndex;size:64" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// EmailOrEmpty 便于展示（email 可空）
func (u User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
