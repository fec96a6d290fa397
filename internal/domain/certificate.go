package domain

import "time"

// Certificate 每个 (event, user) 至多一张
type Certificate struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	EventID string `gorm:"size:36;not null;uniqueIndex:certificate_event_user" json:"eventId"`
	UserID  string `gorm:"size:36;not null;uniqueIndex:certificate_event_user;index" json:"userId"`
	HashKey string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"createdAt"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Certificate) TableName() string { return "certificates" }

// CertificateView 渲染与展示所需的完整数据
type CertificateView struct {
	ID         string `json:"id"`
	User       User   `json:"user"`
	Event      Event  `json:"event"`
	Presenters []User `json:"presenters"`
	Verified   bool   `json:"verified"`
}

// ParticipantRow 报名列表的一行（certificate 可空）
type ParticipantRow struct {
	User        User    `json:"user"`
	Certificate *string `json:"certificate"`
}

type Page[T any] struct {
	Data     []T   `json:"data"`
	Limit    int   `json:"limit"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// Models 需要迁移的全部模型（顺序即依赖顺序）
func Models() []any {
	return []any{&User{}, &Event{}, &Presenter{}, &Participant{}, &Certificate{}}
}
