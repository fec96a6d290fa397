package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"community-events/internal/certificate"
	"community-events/internal/core/auth"
	"community-events/internal/domain"
	"community-events/internal/service"
	"community-events/internal/transport/http/ez"
)

type CertificateHandler struct {
	certs *service.CertificateService
}

func NewCertificateHandler(c *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certs: c}
}

func (h *CertificateHandler) Priority() int { return 30 }

type certificateOut struct {
	Certificate *domain.CertificateView `json:"certificate"`
	URL         string                  `json:"url"`
	Image       string                  `json:"image"` // data:image/png;base64,...
}

func (h *CertificateHandler) MountAPI(e ez.EZ) {
	// 证书页公开，扫码即可验证
	ez.RegisterAction(e, ez.Action[struct{}, *certificateOut]{
		Method: http.MethodGet,
		Path:   "/certificates/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ auth.SessionUser, _ *struct{}) (*certificateOut, error) {
			v, png, err := h.certs.PNG(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return &certificateOut{Certificate: v, URL: h.certs.URL(v.ID), Image: certificate.DataURL(png)}, nil
		},
	})

	ez.Raw(e, http.MethodGet, "/certificates/:id/pdf", false, nil, func(c *gin.Context, _ auth.SessionUser) error {
		b, err := h.certs.PDF(c.Request.Context(), c.Param("id"))
		if err != nil {
			return err
		}
		c.Header("Content-Disposition", `attachment; filename="certificado.pdf"`)
		c.Data(http.StatusOK, "application/pdf", b)
		return nil
	})
}

// MountRoot /c/:id 是二维码里的短链，直接给 PNG
func (h *CertificateHandler) MountRoot(e ez.EZ) {
	ez.Raw(e, http.MethodGet, "/c/:id", false, nil, func(c *gin.Context, _ auth.SessionUser) error {
		_, b, err := h.certs.PNG(c.Request.Context(), c.Param("id"))
		if err != nil {
			return err
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", b)
		return nil
	})
}
