package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestStoreCreateSetsCookieAttributes(t *testing.T) {
	c, w := newTestContext(t)
	store := NewStore(c, true)

	expires := time.Now().Add(24 * time.Hour).UTC()
	store.Create("opaque-token", expires)

	cookie := findCookie(t, w, CookieName)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "opaque-token" {
		t.Fatalf("unexpected value: %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Fatal("cookie must be Secure when store is secure")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected SameSite: %v", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Fatalf("unexpected path: %q", cookie.Path)
	}
	if cookie.Expires.Unix() != expires.Unix() {
		t.Fatalf("unexpected expiry: %v, want %v", cookie.Expires, expires)
	}
}

func TestStoreCreateInsecureMode(t *testing.T) {
	c, w := newTestContext(t)
	store := NewStore(c, false)

	store.Create("opaque-token", time.Now().Add(time.Hour))

	cookie := findCookie(t, w, CookieName)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Secure {
		t.Fatal("cookie must not be Secure in development mode")
	}
}

func TestStoreReadPresent(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "opaque-token"})

	store := NewStore(c, false)
	token, ok := store.Read()
	if !ok || token != "opaque-token" {
		t.Fatalf("Read returned (%q, %v)", token, ok)
	}
}

func TestStoreReadAbsent(t *testing.T) {
	c, _ := newTestContext(t)
	store := NewStore(c, false)

	if token, ok := store.Read(); ok {
		t.Fatalf("Read returned (%q, true), want absent", token)
	}
}

func TestStoreDeleteExpiresCookie(t *testing.T) {
	c, w := newTestContext(t)
	store := NewStore(c, false)

	// 存在しないクッキーの削除もエラーにならない（冪等）
	store.Delete()

	cookie := findCookie(t, w, CookieName)
	if cookie == nil {
		t.Fatal("expected an expiring Set-Cookie header")
	}
	if cookie.MaxAge >= 0 && cookie.Expires.After(time.Now()) {
		t.Fatalf("cookie is not expired: MaxAge=%d Expires=%v", cookie.MaxAge, cookie.Expires)
	}
	if cookie.Value != "" {
		t.Fatalf("unexpected value: %q", cookie.Value)
	}
}
