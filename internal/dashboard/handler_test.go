package dashboard

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/account-portal/internal/authapi"
	"github.com/yourusername/account-portal/internal/config"
	"github.com/yourusername/account-portal/internal/session"
)

type stubVerifyClient struct {
	session *authapi.UserSession
	err     error
	calls   int
}

func (s *stubVerifyClient) VerifySession(ctx context.Context, token string) (*authapi.UserSession, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func newDashboardRouter(api session.VerifyClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{GinMode: gin.TestMode}
	h := NewHandler(cfg, api, log.New(io.Discard, "", 0))

	router := gin.New()
	router.GET("/", h.Home)
	router.GET("/api/dashboard", h.Show)
	return router
}

func TestShowReturnsUserForValidSession(t *testing.T) {
	api := &stubVerifyClient{session: &authapi.UserSession{
		UserID: 7,
		User: authapi.User{
			ID:        7,
			Email:     "user@example.com",
			FirstName: "Taro",
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	router := newDashboardRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "opaque-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "user@example.com") {
		t.Fatalf("response does not contain user email: %s", rec.Body.String())
	}
}

func TestShowClearsInvalidCookieAndRedirects(t *testing.T) {
	api := &stubVerifyClient{err: errors.New("upstream returned 401")}
	router := newDashboardRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}

	// 無効クッキーは削除される
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName && cookie.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected the stale session cookie to be cleared")
	}
}

func TestShowWithoutCookieRedirectsWithoutNetworkCall(t *testing.T) {
	api := &stubVerifyClient{}
	router := newDashboardRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if api.calls != 0 {
		t.Fatalf("expected zero verify calls, got %d", api.calls)
	}
}

func TestHomeRedirectsAuthenticatedUserToDashboard(t *testing.T) {
	api := &stubVerifyClient{session: &authapi.UserSession{UserID: 1}}
	router := newDashboardRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "opaque-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
}

func TestHomeRedirectsAnonymousUserToLogin(t *testing.T) {
	api := &stubVerifyClient{}
	router := newDashboardRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
}
