package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"community-events/internal/core/config"
)

const githubAPI = "https://api.github.com"

type GitHubProfile struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// GitHubOAuth 登录唯一的外部身份来源
type GitHubOAuth struct {
	cfg     *oauth2.Config
	apiBase string
}

func NewGitHubOAuth(c config.GitHub) *GitHubOAuth {
	return &GitHubOAuth{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       c.Scopes,
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPI,
	}
}

// WithEndpoints 测试用：替换授权/令牌/API 地址
func (g *GitHubOAuth) WithEndpoints(ep oauth2.Endpoint, apiBase string) *GitHubOAuth {
	cp := *g.cfg
	cp.Endpoint = ep
	return &GitHubOAuth{cfg: &cp, apiBase: apiBase}
}

func (g *GitHubOAuth) Enabled() bool { return g.cfg.ClientID != "" && g.cfg.ClientSecret != "" }

func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *GitHubOAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange 用授权码换 token，再拉取资料；资料无公开邮箱时取已验证的主邮箱
func (g *GitHubOAuth) Exchange(ctx context.Context, code string) (*GitHubProfile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github exchange: %w", err)
	}
	client := g.cfg.Client(ctx, tok)

	var data struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, g.apiBase+"/user", &data); err != nil {
		return nil, err
	}
	if data.ID == 0 {
		return nil, errors.New("github profile without id")
	}

	if data.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, g.apiBase+"/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					data.Email = e.Email
					break
				}
			}
		}
	}

	name := data.Name
	if name == "" {
		name = data.Login
	}
	return &GitHubProfile{
		ID:        strconv.FormatInt(data.ID, 10),
		Login:     data.Login,
		Name:      name,
		Email:     data.Email,
		AvatarURL: data.AvatarURL,
	}, nil
}

func getJSON(ctx context.Context, c *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github api %s returned %d: %s", url, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
