package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"community-events/internal/core/auth"
	"community-events/internal/storage"
	"community-events/internal/transport/http/ez"
)

// ImageHandler 本地存储模式下提供 /images/:name
type ImageHandler struct {
	local *storage.Local
}

func NewImageHandler(l *storage.Local) *ImageHandler { return &ImageHandler{local: l} }

func (h *ImageHandler) MountRoot(e ez.EZ) {
	path := strings.TrimSuffix(storage.LocalPrefix, "/") + "/:name"
	ez.Raw(e, http.MethodGet, path, false, nil, func(c *gin.Context, _ auth.SessionUser) error {
		p, err := h.local.Path(c.Param("name"))
		if err != nil {
			return err
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.File(p)
		return nil
	})
}
