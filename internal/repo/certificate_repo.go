package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"community-events/internal/domain"
)

type CertificateRepo struct{ db *gorm.DB }

// CreateBatch 唯一索引 (event_id, user_id) 挡住重复发证
func (r *CertificateRepo) CreateBatch(ctx context.Context, cs []domain.Certificate) error {
	if len(cs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&cs).Error
}

// FindByID 预加载 Event 与 User
func (r *CertificateRepo) FindByID(ctx context.Context, id string) (*domain.Certificate, error) {
	var c domain.Certificate
	err := r.db.WithContext(ctx).Preload("Event").Preload("User").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepo) ListByUser(ctx context.Context, userID string) ([]domain.Certificate, error) {
	var cs []domain.Certificate
	err := r.db.WithContext(ctx).Preload("Event").Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&cs).Error
	return cs, err
}

func (r *CertificateRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Certificate{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

func (r *CertificateRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Certificate{}, "event_id = ?", eventID).Error
}
