// Package dashboard は保護された画面側のエンドポイントを提供します。
package dashboard

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/account-portal/internal/config"
	"github.com/yourusername/account-portal/internal/session"
)

// Handler はホームとダッシュボードのハンドラーをまとめた構造体です。
type Handler struct {
	cfg    *config.Config
	api    session.VerifyClient
	logger *log.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(cfg *config.Config, api session.VerifyClient, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		cfg:    cfg,
		api:    api,
		logger: logger,
	}
}

func (h *Handler) secureCookies() bool {
	return h.cfg.GinMode == gin.ReleaseMode
}

// Home は GET / のハンドラーです。
// 認証済みならダッシュボードへ、未認証ならログインページへ振り分けます。
func (h *Handler) Home(c *gin.Context) {
	store := session.NewStore(c, h.secureCookies())
	verifier := session.NewVerifier(store, h.api, h.logger)

	if verifier.IsAuthenticated(c.Request.Context()) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// Show は GET /api/dashboard のハンドラーです。
// クッキーはあるがトークンが無効・期限切れの場合は、無効クッキーを削除して
// ログインページへ誘導します（存在チェックしかしないミドルウェアの後始末）。
func (h *Handler) Show(c *gin.Context) {
	store := session.NewStore(c, h.secureCookies())
	verifier := session.NewVerifier(store, h.api, h.logger)

	user := verifier.CurrentUser(c.Request.Context())
	if user == nil {
		if _, ok := store.Read(); ok {
			store.Delete()
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
