package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"community-events/internal/core/cache"
	"community-events/internal/domain"
	"community-events/internal/repo"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// page*limit 不超过 int32
	maxPage = math.MaxInt32 / MaxPageSize
)

type RegistrationService struct {
	repos *repo.Repos
	cache *cache.Cache
	log   *zap.Logger
}

func NewRegistrationService(r *repo.Repos, c *cache.Cache, l *zap.Logger) *RegistrationService {
	return &RegistrationService{repos: r, cache: c, log: l}
}

func (s *RegistrationService) invalidate(ctx context.Context) {
	s.cache.Del(ctx, listCachePrefix, listCachePrefix+string(domain.EventWorkshop), listCachePrefix+string(domain.EventTalk))
}

// Register 事务内逐项检查：存在、已激活、未完成、未满员、未报名；主键冲突同样视为已报名
func (s *RegistrationService) Register(ctx context.Context, eventID, userID string) error {
	err := s.repos.Transaction(ctx, func(tx *repo.Repos) error {
		ev, err := tx.Events.FindForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		switch {
		case ev == nil:
			return domain.ErrEventNotFound
		case !ev.Active:
			return domain.ErrNotActive
		case ev.Done:
			return domain.ErrEventIsDone
		}
		if limit := ev.Capacity(); limit > 0 {
			n, err := tx.Participants.Count(ctx, eventID)
			if err != nil {
				return err
			}
			if n >= int64(limit) {
				return domain.ErrEventFull
			}
		}
		exists, err := tx.Participants.Exists(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}
		err = tx.Participants.Create(ctx, &domain.Participant{EventID: eventID, UserID: userID})
		if repo.IsDupKey(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	})

	registrationsTotal.WithLabelValues(registrationResult(err)).Inc()
	if err != nil {
		if domain.KindOf(err) != domain.KindUnexpected {
			return err
		}
		return fmt.Errorf("register: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func registrationResult(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return "error"
}

// Unregister 不检查活动状态，已完成的活动也可以取消
func (s *RegistrationService) Unregister(ctx context.Context, eventID, userID string) error {
	if _, err := s.repos.Participants.Delete(ctx, eventID, userID); err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// ListParticipants limit 默认 10，上限 100
func (s *RegistrationService) ListParticipants(ctx context.Context, eventID string, page, limit int) (*domain.Page[domain.ParticipantRow], error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	page = min(max(page, 0), maxPage)

	rows, total, err := s.repos.Participants.Page(ctx, eventID, page*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return &domain.Page[domain.ParticipantRow]{
		Data:     rows,
		Limit:    limit,
		Page:     page,
		PageSize: len(rows),
		Total:    total,
	}, nil
}

func (s *RegistrationService) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	ok, err := s.repos.Participants.Exists(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return ok, nil
}

func (s *RegistrationService) Registrations(ctx context.Context, userID string) ([]domain.EventDetail, error) {
	evs, err := s.repos.Events.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return details(ctx, s.repos, evs)
}
