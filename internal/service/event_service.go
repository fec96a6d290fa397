package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"community-events/internal/certificate"
	"community-events/internal/core/cache"
	"community-events/internal/domain"
	"community-events/internal/repo"
	"community-events/internal/storage"
)

const listCachePrefix = "events:list:"

type CreateEventInput struct {
	Name       string
	Date       time.Time
	Duration   float64
	Type       domain.EventType
	Limit      *int
	Presenters []string // 讲师邮箱
}

type EditEventInput struct {
	Name     string
	Date     time.Time
	Duration float64
	Limit    *int
}

type Image struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

type CreateEventResult struct {
	Event                domain.EventDetail `json:"event"`
	UnresolvedPresenters []string           `json:"unresolvedPresenters"`
}

type EventService struct {
	repos      *repo.Repos
	store      storage.Store
	cache      *cache.Cache
	hashSecret string
	log        *zap.Logger
}

func NewEventService(r *repo.Repos, s storage.Store, c *cache.Cache, hashSecret string, l *zap.Logger) *EventService {
	return &EventService{repos: r, store: s, cache: c, hashSecret: hashSecret, log: l}
}

func (s *EventService) invalidate(ctx context.Context) {
	s.cache.Del(ctx, listCachePrefix, listCachePrefix+string(domain.EventWorkshop), listCachePrefix+string(domain.EventTalk))
}

func validLimit(l *int) error {
	if l != nil && *l < 0 {
		return domain.Validation("limit must be a non-negative integer")
	}
	return nil
}

func validateCommon(name string, date time.Time, duration float64) error {
	switch {
	case strings.TrimSpace(name) == "":
		return domain.Validation("name is required")
	case date.IsZero():
		return domain.Validation("date is required")
	case duration <= 0:
		return domain.Validation("duration must be greater than 0")
	}
	return nil
}

// normalizeEmails 去空白、转小写、去重，保持顺序
func normalizeEmails(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func zero() *int { z := 0; return &z }

// Create 先校验，再上传图片，最后在一个事务里写事件和讲师；写库失败时删除已上传的图片
func (s *EventService) Create(ctx context.Context, in CreateEventInput, img *Image) (*CreateEventResult, error) {
	if in.Type == "" {
		in.Type = domain.EventWorkshop
	}
	if !in.Type.Valid() {
		return nil, domain.Validation("type must be workshop or talk")
	}
	if err := validateCommon(in.Name, in.Date, in.Duration); err != nil {
		return nil, err
	}
	if img == nil || img.Reader == nil || img.Size == 0 {
		return nil, domain.Validation("image is required")
	}
	ext, ok := storage.ExtensionFor(img.ContentType)
	if !ok {
		return nil, domain.Validation("image must be png, jpeg, webp, gif or avif")
	}

	emails := normalizeEmails(in.Presenters)
	if in.Type == domain.EventTalk {
		in.Limit, emails = zero(), nil
	} else {
		if len(emails) == 0 {
			return nil, domain.Validation("workshop requires at least one presenter")
		}
		if err := validLimit(in.Limit); err != nil {
			return nil, err
		}
	}

	presenters, err := s.repos.Users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve presenters: %w", err)
	}
	unresolved := unresolvedEmails(emails, presenters)
	if len(unresolved) > 0 {
		s.log.Warn("presenter emails without user dropped", zap.Strings("emails", unresolved))
	}

	url, err := s.store.Store(ctx, uuid.NewString()+ext, img.Reader, img.Size, img.ContentType)
	if err != nil {
		return nil, domain.Storage("image upload failed", err)
	}

	ev := domain.Event{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Image:    url,
		Date:     in.Date,
		Duration: in.Duration,
		Limit:    in.Limit,
		Type:     in.Type,
	}
	presenters = inEmailOrder(emails, presenters)
	ids := make([]string, 0, len(presenters))
	for _, p := range presenters {
		ids = append(ids, p.ID)
	}
	err = s.repos.Transaction(ctx, func(tx *repo.Repos) error {
		if err := tx.Events.Create(ctx, &ev); err != nil {
			return err
		}
		return tx.Presenters.Add(ctx, ev.ID, ids)
	})
	if err != nil {
		if derr := s.store.Delete(ctx, url); derr != nil {
			s.log.Error("orphan image after failed create", zap.String("url", url), zap.Error(derr))
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.invalidate(ctx)
	lifecycleTotal.WithLabelValues("created").Inc()
	if presenters == nil {
		presenters = []domain.User{}
	}
	return &CreateEventResult{
		Event:                domain.EventDetail{Event: ev, Presenters: presenters},
		UnresolvedPresenters: unresolved,
	}, nil
}

// inEmailOrder 按表单邮箱顺序排列讲师
func inEmailOrder(emails []string, found []domain.User) []domain.User {
	byEmail := make(map[string]domain.User, len(found))
	for _, u := range found {
		byEmail[strings.ToLower(u.EmailOrEmpty())] = u
	}
	out := make([]domain.User, 0, len(found))
	for _, e := range emails {
		if u, ok := byEmail[e]; ok {
			out = append(out, u)
		}
	}
	return out
}

func unresolvedEmails(emails []string, found []domain.User) []string {
	have := make(map[string]struct{}, len(found))
	for _, u := range found {
		have[strings.ToLower(u.EmailOrEmpty())] = struct{}{}
	}
	out := []string{}
	for _, e := range emails {
		if _, ok := have[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// Edit 只改 name/date/duration/limit；talk 的 limit 固定为 0
func (s *EventService) Edit(ctx context.Context, id string, in EditEventInput) (*domain.EventDetail, error) {
	if err := validateCommon(in.Name, in.Date, in.Duration); err != nil {
		return nil, err
	}
	if err := validLimit(in.Limit); err != nil {
		return nil, err
	}
	ev, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, domain.ErrEventNotFound
	}
	limit := in.Limit
	if ev.Type == domain.EventTalk {
		limit = zero()
	}
	cols := map[string]any{
		"name":     strings.TrimSpace(in.Name),
		"date":     in.Date,
		"duration": in.Duration,
		"limit":    limit,
	}
	if _, err := s.repos.Events.Update(ctx, id, cols); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.invalidate(ctx)
	lifecycleTotal.WithLabelValues("edited").Inc()
	return s.Get(ctx, id)
}

// Delete 一个事务内按依赖顺序删除，提交后再删图片；删图失败只记日志
func (s *EventService) Delete(ctx context.Context, id string) error {
	var image string
	err := s.repos.Transaction(ctx, func(tx *repo.Repos) error {
		ev, err := tx.Events.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if ev == nil {
			return domain.ErrEventNotFound
		}
		image = ev.Image
		if err := tx.Participants.DeleteByEvent(ctx, id); err != nil {
			return err
		}
		if err := tx.Presenters.DeleteByEvent(ctx, id); err != nil {
			return err
		}
		if err := tx.Certificates.DeleteByEvent(ctx, id); err != nil {
			return err
		}
		_, err = tx.Events.Delete(ctx, id)
		return err
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	if err := s.store.Delete(ctx, image); err != nil {
		s.log.Warn("event image not deleted", zap.String("event", id), zap.String("image", image), zap.Error(err))
	}
	s.invalidate(ctx)
	lifecycleTotal.WithLabelValues("deleted").Inc()
	return nil
}

func (s *EventService) Activate(ctx context.Context, id string) error {
	ev, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return domain.ErrEventNotFound
	}
	if ev.Active {
		return domain.ErrAlreadyActive
	}
	n, err := s.repos.Events.Activate(ctx, id)
	if err != nil {
		return fmt.Errorf("activate event: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyActive
	}
	s.invalidate(ctx)
	lifecycleTotal.WithLabelValues("activated").Inc()
	return nil
}

// MarkDone 前置条件依次为：存在、未完成、已激活。workshop 在同一事务里置 done 并为未发证的报名者发证
func (s *EventService) MarkDone(ctx context.Context, id string) (int, error) {
	ev, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("load event: %w", err)
	}
	switch {
	case ev == nil:
		return 0, domain.ErrEventNotFound
	case ev.Done:
		return 0, domain.ErrAlreadyDone
	case !ev.Active:
		return 0, domain.ErrNotActive
	}

	issued := 0
	err = s.repos.Transaction(ctx, func(tx *repo.Repos) error {
		n, err := tx.Events.MarkDone(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			// 并发的另一次 MarkDone 已经提交
			return domain.ErrAlreadyDone
		}
		if !ev.IsWorkshop() {
			return nil
		}
		users, err := tx.Participants.WithoutCertificate(ctx, id)
		if err != nil {
			return err
		}
		certs := make([]domain.Certificate, 0, len(users))
		for _, uid := range users {
			cid := uuid.NewString()
			certs = append(certs, domain.Certificate{
				ID:      cid,
				EventID: id,
				UserID:  uid,
				HashKey: certificate.HashKey(s.hashSecret, cid, id, uid),
			})
		}
		if err := tx.Certificates.CreateBatch(ctx, certs); err != nil {
			return err
		}
		issued = len(certs)
		return nil
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindUnexpected {
			return 0, err
		}
		return 0, fmt.Errorf("mark done: %w", err)
	}

	s.invalidate(ctx)
	lifecycleTotal.WithLabelValues("done").Inc()
	certificatesIssued.Add(float64(issued))
	s.log.Info("event marked done", zap.String("event", id), zap.Int("certificates", issued))
	return issued, nil
}

// List 公开列表，走缓存
func (s *EventService) List(ctx context.Context, typ domain.EventType) ([]domain.EventDetail, error) {
	if typ != "" && !typ.Valid() {
		return nil, domain.Validation("type must be workshop or talk")
	}
	return cache.GetOrLoadJSON(s.cache, ctx, listCachePrefix+string(typ), func(ctx context.Context) ([]domain.EventDetail, error) {
		evs, err := s.repos.Events.List(ctx, typ)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		return details(ctx, s.repos, evs)
	})
}

func (s *EventService) Get(ctx context.Context, id string) (*domain.EventDetail, error) {
	ev, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, domain.ErrEventNotFound
	}
	ds, err := details(ctx, s.repos, []domain.Event{*ev})
	if err != nil {
		return nil, err
	}
	return &ds[0], nil
}
