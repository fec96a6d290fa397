package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"community-events/internal/core/config"
	"community-events/internal/domain"
)

func testJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
}

func TestJWTer_IssueParseRoundTrip(t *testing.T) {
	j := testJWTer()
	tok, err := j.Issue(SessionUser{ID: "u1", Name: "Ada", Email: "ada@x.dev", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	s := j.Session(tok)
	a, ok := s.(Authenticated)
	if !ok {
		t.Fatalf("session = %T, want Authenticated", s)
	}
	if a.User.ID != "u1" || a.User.Role != domain.RoleAdmin || a.User.Email != "ada@x.dev" {
		t.Fatalf("unexpected user: %+v", a.User)
	}
}

func TestJWTer_InvalidTokensAreAnonymous(t *testing.T) {
	j := testJWTer()
	other := &JWTer{Secret: []byte("other"), Issuer: "test", TTL: time.Hour}
	foreign, _ := other.Issue(SessionUser{ID: "u1"})
	expired, _ := (&JWTer{Secret: j.Secret, Issuer: "test", TTL: -time.Hour}).Issue(SessionUser{ID: "u1"})
	wrongIssuer, _ := (&JWTer{Secret: j.Secret, Issuer: "elsewhere", TTL: time.Hour}).Issue(SessionUser{ID: "u1"})

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"foreign":      foreign,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
	} {
		t.Run(name, func(t *testing.T) {
			if _, ok := j.Session(tok).(Anonymous); !ok {
				t.Fatal("expected Anonymous")
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	admin := Authenticated{User: SessionUser{ID: "a", Role: domain.RoleAdmin}}
	user := Authenticated{User: SessionUser{ID: "u", Role: domain.RoleUser}}

	cases := []struct {
		name    string
		s       Session
		role    domain.Role
		wantErr bool
	}{
		{"anonymous any", Anonymous{}, "", true},
		{"anonymous admin", Anonymous{}, domain.RoleAdmin, true},
		{"user any", user, "", false},
		{"user admin", user, domain.RoleAdmin, true},
		{"admin admin", admin, domain.RoleAdmin, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Authorize(tc.s, tc.role)
			if tc.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestFromContext_DefaultsToAnonymous(t *testing.T) {
	if _, ok := FromContext(context.Background()).(Anonymous); !ok {
		t.Fatal("empty context should be Anonymous")
	}
	ctx := WithSession(context.Background(), Authenticated{User: SessionUser{ID: "x"}})
	if a, ok := FromContext(ctx).(Authenticated); !ok || a.User.ID != "x" {
		t.Fatal("session not carried by context")
	}
}

func TestGitHubOAuth_ExchangeFallsBackToPrimaryEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "login": "octo", "avatar_url": "https://img/octo"})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@x.dev", "primary": false, "verified": true},
			{"email": "octo@x.dev", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGitHubOAuth(config.GitHub{ClientID: "id", ClientSecret: "secret"}).
		WithEndpoints(oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}, srv.URL)

	p, err := g.Exchange(context.Background(), "code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if p.ID != "42" || p.Email != "octo@x.dev" || p.Name != "octo" || p.AvatarURL != "https://img/octo" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if !strings.HasPrefix(g.AuthCodeURL("st"), srv.URL+"/authorize") {
		t.Fatalf("auth url not using endpoint: %s", g.AuthCodeURL("st"))
	}
}
