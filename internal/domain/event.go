package domain

import "time"

type EventType string

const (
	EventWorkshop EventType = "workshop"
	EventTalk     EventType = "talk"
)

func (t EventType) Valid() bool { return t == EventWorkshop || t == EventTalk }

// Event 状态机：created(active=false,done=false) → active → done（终态）
type Event struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Image    string    `gorm:"size:512;not null" json:"image"`
	Date     time.Time `gorm:"not null;index" json:"date"`
	Duration float64   `gorm:"not null" json:"duration"`
	Done     bool      `gorm:"not null;default:false" json:"done"`
	Active   bool      `gorm:"not null;default:false" json:"active"`
	Limit    *int      `json:"limit"`
	Type     EventType `gorm:"size:16;not null;default:workshop" json:"type"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// Capacity 0 表示不限
func (e Event) Capacity() int {
	if e.Limit == nil || *e.Limit < 0 {
		return 0
	}
	return *e.Limit
}

func (e Event) IsWorkshop() bool { return e.Type == EventWorkshop }

type Presenter struct {
	EventID string `gorm:"primaryKey;size:36"`
	UserID  string `gorm:"primaryKey;size:36;index"`
	// 表单里的顺序，第一位在证书上签名
	Position int `gorm:"not null;default:0"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Presenter) TableName() string { return "presenters" }

type Participant struct {
	EventID   string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"index"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Participant) TableName() string { return "participants" }

// EventDetail 事件 + 讲师 + 报名人数
type EventDetail struct {
	Event
	Presenters   []User `json:"presenters"`
	Participants int64  `json:"participants"`
}
