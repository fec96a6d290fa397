package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	"community-events/internal/service"
	"community-events/internal/transport/http/ez"
)

var adminOnly = []domain.Role{domain.RoleAdmin}

type EventHandler struct {
	events *service.EventService
	regs   *service.RegistrationService
}

func NewEventHandler(e *service.EventService, r *service.RegistrationService) *EventHandler {
	return &EventHandler{events: e, regs: r}
}

func (h *EventHandler) Priority() int { return 10 }

type listEventsQuery struct {
	Type domain.EventType `form:"type" binding:"omitempty,oneof=workshop talk"`
}

type createEventForm struct {
	Name       string           `form:"name" binding:"required"`
	Date       time.Time        `form:"date" binding:"required"`
	Duration   float64          `form:"duration" binding:"gt=0"`
	Type       domain.EventType `form:"type" binding:"omitempty,oneof=workshop talk"`
	Limit      *int             `form:"limit" binding:"omitempty,gte=0"`
	Presenters []string         `form:"presenters"`
}

type editEventBody struct {
	Name     string    `json:"name" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
	Duration float64   `json:"duration" binding:"gt=0"`
	Limit    *int      `json:"limit" binding:"omitempty,gte=0"`
}

type pageQuery struct {
	Limit int `form:"limit"`
	Page  int `form:"page"`
}

// splitPresenters 同时支持重复字段和逗号分隔
func splitPresenters(in []string) []string {
	var out []string
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (h *EventHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[listEventsQuery, []domain.EventDetail]{
		Method: http.MethodGet,
		Path:   "/events",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *listEventsQuery) ([]domain.EventDetail, error) {
			return h.events.List(c.Request.Context(), in.Type)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.EventDetail]{
		Method: http.MethodGet,
		Path:   "/events/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (*domain.EventDetail, error) {
			return h.events.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[createEventForm, *service.CreateEventResult]{
		Method: http.MethodPost,
		Path:   "/events",
		Binder: ez.BindForm,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *createEventForm) (*service.CreateEventResult, error) {
			var img *service.Image
			if fh, err := c.FormFile("image"); err == nil {
				f, err := fh.Open()
				if err != nil {
					return nil, domain.Validation("image could not be read")
				}
				defer f.Close()
				img = &service.Image{Reader: f, Size: fh.Size, ContentType: fh.Header.Get("Content-Type")}
			}
			return h.events.Create(c.Request.Context(), service.CreateEventInput{
				Name:       in.Name,
				Date:       in.Date,
				Duration:   in.Duration,
				Type:       in.Type,
				Limit:      in.Limit,
				Presenters: splitPresenters(in.Presenters),
			}, img)
		},
	})

	ez.RegisterAction(e, ez.Action[editEventBody, *domain.EventDetail]{
		Method: http.MethodPut,
		Path:   "/events/:id",
		Binder: ez.BindJSON,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *editEventBody) (*domain.EventDetail, error) {
			return h.events.Edit(c.Request.Context(), c.Param("id"), service.EditEventInput{
				Name: in.Name, Date: in.Date, Duration: in.Duration, Limit: in.Limit,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/events/:id",
		Binder: ez.BindNone,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.events.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/events/:id/active",
		Binder: ez.BindNone,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.events.Activate(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id, "active": true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/events/:id/done",
		Binder: ez.BindNone,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			n, err := h.events.MarkDone(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return gin.H{"id": id, "done": true, "certificates": n}, nil
		},
	})

	// ---- 报名 ----

	ez.RegisterAction(e, ez.Action[pageQuery, *domain.Page[domain.ParticipantRow]]{
		Method: http.MethodGet,
		Path:   "/events/:id/participants",
		Binder: ez.BindQuery,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ auth.SessionUser, in *pageQuery) (*domain.Page[domain.ParticipantRow], error) {
			return h.regs.ListParticipants(c.Request.Context(), c.Param("id"), in.Page, in.Limit)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/events/:id/participants",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.regs.Register(c.Request.Context(), id, u.ID); err != nil {
				return nil, err
			}
			return gin.H{"eventId": id, "registered": true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/events/:id/participants",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.regs.Unregister(c.Request.Context(), id, u.ID); err != nil {
				return nil, err
			}
			return gin.H{"eventId": id, "registered": false}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/events/:id/registered",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, u auth.SessionUser, _ *struct{}) (gin.H, error) {
			ok, err := h.regs.IsRegistered(c.Request.Context(), c.Param("id"), u.ID)
			if err != nil {
				return nil, err
			}
			return gin.H{"registered": ok}, nil
		},
	})
}
