// Package auth はログイン・サインアップ・ログアウトの各フローと、
// 保護ルートを守るミドルウェアを提供します。
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/account-portal/internal/config"
	"github.com/yourusername/account-portal/internal/session"
)

// Handler は認証まわりのHTTPハンドラーをまとめた構造体です。
type Handler struct {
	cfg     *config.Config
	gateway *Gateway
	limiter AttemptLimiter
	logger  *log.Logger
}

// NewHandler は Handler を作成します。limiter は nil でもよく、その場合は
// 試行回数制限が無効になります。
func NewHandler(cfg *config.Config, gateway *Gateway, limiter AttemptLimiter, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		cfg:     cfg,
		gateway: gateway,
		limiter: limiter,
		logger:  logger,
	}
}

func (h *Handler) secureCookies() bool {
	return h.cfg.GinMode == gin.ReleaseMode
}

// Login は POST /api/auth/login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if h.limiter != nil {
		if retryAfter, locked := h.limiter.CheckLock(c.Request.Context(), ip); locked {
			// Retry-After は秒数またはHTTP-Date形式が推奨されているため秒数で返す
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    "TOO_MANY_ATTEMPTS",
				"message": "Too many login attempts. Please try again later.",
			})
			return
		}
	}

	form := LoginForm{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	store := session.NewStore(c, h.secureCookies())
	result := h.gateway.Login(c.Request.Context(), store, form)

	switch result.Kind {
	case FlowSuccess:
		if h.limiter != nil {
			h.limiter.Reset(c.Request.Context(), ip)
		}
		c.JSON(http.StatusOK, gin.H{"redirect": result.RedirectTo})
	case FlowValidationFailure:
		c.JSON(http.StatusBadRequest, gin.H{
			"errors":   result.Errors,
			"formData": result.Form,
		})
	case FlowDomainFailure:
		body := gin.H{
			"errors":   result.Errors,
			"formData": result.Form,
		}
		if h.limiter != nil {
			body["remainingAttempts"] = h.limiter.RecordFailure(c.Request.Context(), ip)
		}
		c.JSON(http.StatusUnauthorized, body)
	case FlowTransportFailure:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message":  result.Message,
			"formData": result.Form,
		})
	default: // FlowUpstreamFailure
		c.JSON(http.StatusBadGateway, gin.H{
			"message":  result.Message,
			"formData": result.Form,
		})
	}
}

// Signup は POST /api/auth/signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	form := SignupForm{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
	}
	result := h.gateway.Signup(c.Request.Context(), form, c.PostForm("redirect_uri"))

	switch result.Kind {
	case FlowSuccess:
		c.JSON(http.StatusOK, gin.H{"redirect": result.RedirectTo})
	case FlowValidationFailure:
		c.JSON(http.StatusBadRequest, gin.H{
			"errors":   result.Errors,
			"formData": result.Form,
		})
	case FlowDomainFailure:
		c.JSON(http.StatusConflict, gin.H{
			"errors":   result.Errors,
			"formData": result.Form,
		})
	case FlowTransportFailure:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message":  result.Message,
			"formData": result.Form,
		})
	default: // FlowUpstreamFailure
		c.JSON(http.StatusBadGateway, gin.H{
			"message":  result.Message,
			"formData": result.Form,
		})
	}
}

// Logout は POST /api/auth/logout のハンドラーです。
// セッションが無くてもクッキー削除と遷移は行います。
func (h *Handler) Logout(c *gin.Context) {
	store := session.NewStore(c, h.secureCookies())
	redirectTo := h.gateway.Logout(c.Request.Context(), store)
	c.JSON(http.StatusOK, gin.H{"redirect": redirectTo})
}

// ClearSession は POST /api/auth/clear-session のハンドラーです。
// 検証に失敗した無効クッキーの掃除用で、外部APIへの通知は行いません。
func (h *Handler) ClearSession(c *gin.Context) {
	store := session.NewStore(c, h.secureCookies())
	store.Delete()
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// IssueCSRF は GET /api/auth/csrf のハンドラーです。
// ダブルサブミット方式のトークンをクッキーとレスポンスの両方で渡します。
func (h *Handler) IssueCSRF(c *gin.Context) {
	token, err := generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "Failed to generate CSRF token.",
		})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	c.Header(csrfHeader, token)
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
