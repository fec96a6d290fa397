package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"community-events/internal/core/auth"
	"community-events/internal/domain"
	"community-events/internal/repo"
)

type UserService struct {
	repos *repo.Repos
	log   *zap.Logger
}

func NewUserService(r *repo.Repos, l *zap.Logger) *UserService {
	return &UserService{repos: r, log: l}
}

// SyncGitHubProfile 先按 githubId 再按邮箱找人，找不到就创建；每次登录同步姓名、邮箱、头像
func (s *UserService) SyncGitHubProfile(ctx context.Context, p auth.GitHubProfile) (*domain.User, error) {
	if p.ID == "" {
		return nil, domain.Validation("github profile without id")
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))

	var out *domain.User
	err := s.repos.Transaction(ctx, func(tx *repo.Repos) error {
		u, err := tx.Users.FindByGithubID(ctx, p.ID)
		if err != nil {
			return err
		}
		if u == nil && email != "" {
			if u, err = tx.Users.FindByEmail(ctx, email); err != nil {
				return err
			}
		}
		gid := p.ID
		if u == nil {
			u = &domain.User{ID: uuid.NewString(), Role: domain.RoleUser, GithubID: &gid}
			s.fill(u, p, email, nil)
			return assign(&out, u, tx.Users.Create(ctx, u))
		}

		var taken *domain.User
		if email != "" && !strings.EqualFold(u.EmailOrEmpty(), email) {
			if taken, err = tx.Users.FindByEmail(ctx, email); err != nil {
				return err
			}
		}
		u.GithubID = &gid
		s.fill(u, p, email, taken)
		return assign(&out, u, tx.Users.Update(ctx, u))
	})
	if err != nil {
		return nil, fmt.Errorf("sync profile: %w", err)
	}
	return out, nil
}

// fill 新邮箱已被其他账号占用时保留原邮箱
func (s *UserService) fill(u *domain.User, p auth.GitHubProfile, email string, taken *domain.User) {
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.AvatarURL != "" {
		u.Image = p.AvatarURL
	}
	if email == "" {
		return
	}
	if taken != nil && taken.ID != u.ID {
		s.log.Warn("profile email belongs to another user", zap.String("user", u.ID), zap.String("email", email))
		return
	}
	u.Email = &email
}

func assign(dst **domain.User, u *domain.User, err error) error {
	if err == nil {
		*dst = u
	}
	return err
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int, q string) (*domain.Page[domain.User], error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	users, total, err := s.repos.Users.List(ctx, offset, limit, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &domain.Page[domain.User]{Data: users, Limit: limit, Page: offset / limit, PageSize: len(users), Total: total}, nil
}

func (s *UserService) SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.Validation("role must be user or admin")
	}
	n, err := s.repos.Users.SetRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrUserNotFound
	}
	s.log.Info("role changed", zap.String("user", id), zap.String("role", string(role)))
	return s.Get(ctx, id)
}

// SetRoleByEmail 运维命令用
func (s *UserService) SetRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	u, err := s.repos.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.SetRole(ctx, u.ID, role)
}

// Presenters 可作为讲师的用户（admin）
func (s *UserService) Presenters(ctx context.Context) ([]domain.User, error) {
	us, err := s.repos.Users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list presenters: %w", err)
	}
	if us == nil {
		us = []domain.User{}
	}
	return us, nil
}
