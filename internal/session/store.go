// Package session はセッションクッキーの管理と外部APIによる検証を提供します。
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName はセッションクッキーの名前です。
// 値は外部APIが発行した不透明トークンそのものを保持し、ローカルでは解釈しません。
const CookieName = "session"

// Store は1リクエスト分のセッションクッキーを所有します。
// グローバルな状態ではなく、リクエストごとに生成して各コンポーネントへ渡します。
type Store struct {
	c      *gin.Context
	secure bool
}

// NewStore は gin のコンテキストからリクエストスコープの Store を作成します。
// secure は本番（release モード）でのみ true にします。
func NewStore(c *gin.Context, secure bool) *Store {
	return &Store{
		c:      c,
		secure: secure,
	}
}

// Create はセッションクッキーを設定します。既存のクッキーは上書きされます。
func (s *Store) Create(token string, expiresAt time.Time) {
	http.SetCookie(s.c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read はクッキーの生の値を返します。存在しない場合は false を返します。
// 副作用はありません。
func (s *Store) Read() (string, bool) {
	cookie, err := s.c.Request.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Delete はセッションクッキーを無条件に削除します。
// 存在しないクッキーの削除は何もしないのと同じで、エラーにはなりません。
func (s *Store) Delete() {
	http.SetCookie(s.c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
