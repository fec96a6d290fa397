package service

import (
	"context"
	"fmt"

	"community-events/internal/certificate"
	"community-events/internal/domain"
	"community-events/internal/repo"
)

type CertificateService struct {
	repos      *repo.Repos
	renderer   *certificate.Renderer
	hashSecret string
}

func NewCertificateService(r *repo.Repos, rd *certificate.Renderer, hashSecret string) *CertificateService {
	return &CertificateService{repos: r, renderer: rd, hashSecret: hashSecret}
}

func (s *CertificateService) view(c domain.Certificate, presenters []domain.User) domain.CertificateView {
	if presenters == nil {
		presenters = []domain.User{}
	}
	return domain.CertificateView{
		ID:         c.ID,
		User:       c.User,
		Event:      c.Event,
		Presenters: presenters,
		Verified:   certificate.Verify(s.hashSecret, c.ID, c.EventID, c.UserID, c.HashKey),
	}
}

func (s *CertificateService) Get(ctx context.Context, id string) (*domain.CertificateView, error) {
	c, err := s.repos.Certificates.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCertificateNotFound
	}
	ps, err := s.repos.Presenters.ByEvent(ctx, c.EventID)
	if err != nil {
		return nil, fmt.Errorf("load presenters: %w", err)
	}
	v := s.view(*c, ps)
	return &v, nil
}

func (s *CertificateService) ForUser(ctx context.Context, userID string) ([]domain.CertificateView, error) {
	cs, err := s.repos.Certificates.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.EventID)
	}
	ps, err := s.repos.Presenters.ByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load presenters: %w", err)
	}
	out := make([]domain.CertificateView, 0, len(cs))
	for _, c := range cs {
		out = append(out, s.view(c, ps[c.EventID]))
	}
	return out, nil
}

// URL 证书验证地址
func (s *CertificateService) URL(id string) string { return "https://" + s.renderer.URL(id) }

// PNG 每次请求重新渲染，不落盘
func (s *CertificateService) PNG(ctx context.Context, id string) (*domain.CertificateView, []byte, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.renderer.PNG(certificate.InputFrom(*v))
	if err != nil {
		return nil, nil, fmt.Errorf("render certificate: %w", err)
	}
	return v, b, nil
}

func (s *CertificateService) PDF(ctx context.Context, id string) ([]byte, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.renderer.PDF(certificate.InputFrom(*v))
	if err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return b, nil
}
