package service

import (
	"context"

	"community-events/internal/domain"
	"community-events/internal/repo"
)

// details 批量补全讲师和报名人数，两次查询
func details(ctx context.Context, r *repo.Repos, events []domain.Event) ([]domain.EventDetail, error) {
	out := make([]domain.EventDetail, 0, len(events))
	if len(events) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	presenters, err := r.Presenters.ByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := r.Participants.CountByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		ps := presenters[e.ID]
		if ps == nil {
			ps = []domain.User{}
		}
		out = append(out, domain.EventDetail{Event: e, Presenters: ps, Participants: counts[e.ID]})
	}
	return out, nil
}
