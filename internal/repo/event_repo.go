package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"community-events/internal/domain"
)

type EventRepo struct{ db *gorm.DB }

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindForUpdate 仅在事务内有意义
func (r *EventRepo) FindForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *EventRepo) find(tx *gorm.DB, id string) (*domain.Event, error) {
	var e domain.Event
	err := tx.First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List typ 为空返回全部；按日期倒序
func (r *EventRepo) List(ctx context.Context, typ domain.EventType) ([]domain.Event, error) {
	tx := r.db.WithContext(ctx).Order("date desc").Order("id")
	if typ != "" {
		tx = tx.Where("type = ?", typ)
	}
	var es []domain.Event
	err := tx.Find(&es).Error
	return es, err
}

// Update 只写给定列
func (r *EventRepo) Update(ctx context.Context, id string, cols map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", id).Updates(cols)
	return res.RowsAffected, res.Error
}

// Activate 条件更新，0 行表示已激活或不存在
func (r *EventRepo) Activate(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ? AND active = ?", id, false).
		Update("active", true)
	return res.RowsAffected, res.Error
}

// MarkDone 条件更新：done=false AND active=true
func (r *EventRepo) MarkDone(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ? AND done = ? AND active = ?", id, false, true).
		Update("done", true)
	return res.RowsAffected, res.Error
}

func (r *EventRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// ListByParticipant 用户报名过的事件
func (r *EventRepo) ListByParticipant(ctx context.Context, userID string) ([]domain.Event, error) {
	var es []domain.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN participants p ON p.event_id = events.id").
		Where("p.user_id = ?", userID).
		Order("events.date desc").
		Find(&es).Error
	return es, err
}
