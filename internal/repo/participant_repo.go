package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"community-events/internal/domain"
)

type ParticipantRepo struct{ db *gorm.DB }

func (r *ParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ParticipantRepo) Delete(ctx context.Context, eventID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Participant{}, "event_id = ? AND user_id = ?", eventID, userID)
	return res.RowsAffected, res.Error
}

func (r *ParticipantRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Participant{}, "event_id = ?", eventID).Error
}

func (r *ParticipantRepo) Count(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Participant{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

// CountByEvents eventID -> 报名人数，无人报名的不在 map 中
func (r *ParticipantRepo) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EventID string
		N       int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Participant{}).
		Select("event_id, COUNT(*) AS n").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = row.N
	}
	return out, nil
}

func (r *ParticipantRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Participant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Limit(1).Count(&n).Error
	return n > 0, err
}

// Page 按报名时间排序，左连接证书
func (r *ParticipantRepo) Page(ctx context.Context, eventID string, offset, limit int) ([]domain.ParticipantRow, int64, error) {
	total, err := r.Count(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	var rows []struct {
		domain.User
		CertificateID *string
	}
	err = r.db.WithContext(ctx).Table("participants p").
		Select("u.*, c.id AS certificate_id").
		Joins("JOIN users u ON u.id = p.user_id").
		Joins("LEFT JOIN certificates c ON c.event_id = p.event_id AND c.user_id = p.user_id").
		Where("p.event_id = ?", eventID).
		Order("p.created_at").Order("p.user_id").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.ParticipantRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ParticipantRow{User: row.User, Certificate: row.CertificateID})
	}
	return out, total, nil
}

// WithoutCertificate 尚未发证的报名者
func (r *ParticipantRepo) WithoutCertificate(ctx context.Context, eventID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Table("participants p").
		Joins("LEFT JOIN certificates c ON c.event_id = p.event_id AND c.user_id = p.user_id").
		Where("p.event_id = ? AND c.id IS NULL", eventID).
		Order("p.created_at").
		Pluck("p.user_id", &ids).Error
	return ids, err
}
