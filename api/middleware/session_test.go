package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

type touchRecorder struct {
	touched []string
}

func (t *touchRecorder) Touch(ctx context.Context, sessionID string) error {
	t.touched = append(t.touched, sessionID)
	return nil
}

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{CookieName: "tooly_session", TTL: time.Hour}
}

func TestSessionMintsCookieForNewVisitor(t *testing.T) {
	seen := ""
	handler := Session(sessionConfig(), &touchRecorder{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.IDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if seen == "" {
		t.Fatal("expected a session id in context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "tooly_session" || cookies[0].Value != seen {
		t.Fatalf("expected the minted id in the cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestSessionReusesExistingCookieAndTouches(t *testing.T) {
	touches := &touchRecorder{}
	seen := ""
	handler := Session(sessionConfig(), touches, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "tooly_session", Value: "existing-id"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "existing-id" {
		t.Fatalf("expected existing id, got %q", seen)
	}
	if len(touches.touched) != 1 || touches.touched[0] != "existing-id" {
		t.Fatalf("expected a ttl touch for the session, got %v", touches.touched)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no new cookie should be set for a returning visitor")
	}
}
