package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"community-events/internal/domain"
)

type PresenterRepo struct{ db *gorm.DB }

func (r *PresenterRepo) Add(ctx context.Context, eventID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]domain.Presenter, 0, len(userIDs))
	for i, id := range userIDs {
		rows = append(rows, domain.Presenter{EventID: eventID, UserID: id, Position: i})
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
}

// ByEvents eventID -> 讲师列表（按添加顺序）
func (r *PresenterRepo) ByEvents(ctx context.Context, eventIDs []string) (map[string][]domain.User, error) {
	out := make(map[string][]domain.User, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EventID string
		domain.User
	}
	err := r.db.WithContext(ctx).Table("presenters pr").
		Select("pr.event_id, u.*").
		Joins("JOIN users u ON u.id = pr.user_id").
		Where("pr.event_id IN ?", eventIDs).
		Order("pr.position").Order("u.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = append(out[row.EventID], row.User)
	}
	return out, nil
}

func (r *PresenterRepo) ByEvent(ctx context.Context, eventID string) ([]domain.User, error) {
	m, err := r.ByEvents(ctx, []string{eventID})
	if err != nil {
		return nil, err
	}
	return m[eventID], nil
}

func (r *PresenterRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Presenter{}, "event_id = ?", eventID).Error
}
