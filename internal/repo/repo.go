package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repos 同一 *gorm.DB（或事务）上的全部仓储
type Repos struct {
	db           *gorm.DB
	Users        *UserRepo
	Events       *EventRepo
	Presenters   *PresenterRepo
	Participants *ParticipantRepo
	Certificates *CertificateRepo
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		db:           db,
		Users:        &UserRepo{db: db},
		Events:       &EventRepo{db: db},
		Presenters:   &PresenterRepo{db: db},
		Participants: &ParticipantRepo{db: db},
		Certificates: &CertificateRepo{db: db},
	}
}

// Transaction fn 内只能使用 tx 上的仓储；返回 error 即回滚
func (r *Repos) Transaction(ctx context.Context, fn func(tx *Repos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (r *Repos) DB() *gorm.DB { return r.db }

// forUpdate sqlite 没有行锁（靠库级写锁串行），其余方言加 FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	// 不依赖 gorm.ErrDuplicatedKey（需开启 TranslateError）
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
