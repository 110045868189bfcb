// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/account-portal/internal/auth"
	"github.com/yourusername/account-portal/internal/authapi"
	"github.com/yourusername/account-portal/internal/config"
	"github.com/yourusername/account-portal/internal/dashboard"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.Use(requestIDMiddleware())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-CSRF-Token", // CSRF保護用ヘッダー
	}
	// フロントエンドがレスポンスヘッダーから CSRF トークンを読み取れるように公開
	corsConfig.ExposeHeaders = []string{"X-CSRF-Token", "X-Request-Id"}
	router.Use(cors.New(corsConfig))

	// 外部認証APIクライアント（リトライなし・タイムアウトあり）
	apiClient := authapi.NewClient(
		cfg.AuthAPIURL,
		cfg.AuthAPIKey,
		time.Duration(cfg.AuthAPITimeoutSec)*time.Second,
	)

	// ログイン試行制限ストア（Redis設定があれば共有、無ければインメモリ）
	limiter, err := setupLimiter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up login attempt limiter: %v", err)
	}

	// ルーティングの設定
	setupRoutes(router, cfg, apiClient, limiter)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "account-portal-api",
		"version": "0.1.0",
	})
}

// requestIDMiddleware はリクエストごとにIDを採番し、ログとレスポンスに載せます。
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, apiClient *authapi.Client, limiter auth.AttemptLimiter) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	gateway := auth.NewGateway(apiClient, log.Default())
	authHandler := auth.NewHandler(cfg, gateway, limiter, log.Default())
	dashboardHandler := dashboard.NewHandler(cfg, apiClient, log.Default())

	// ホームは認証状態に応じて振り分けるだけ
	router.GET("/", dashboardHandler.Home)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// CSRFトークンの払い出し（フォーム表示前にクライアントが取得する）
			authRoutes.GET("/csrf", authHandler.IssueCSRF)

			authRoutes.POST("/login", auth.VerifyCSRF(), authHandler.Login)
			authRoutes.POST("/signup", auth.VerifyCSRF(), authHandler.Signup)
			authRoutes.POST("/logout", auth.VerifyCSRF(), authHandler.Logout)
			authRoutes.POST("/clear-session", auth.VerifyCSRF(), authHandler.ClearSession)
		}

		// 保護ルートはクッキーの存在だけを入口で確認し、
		// トークンの正当性はハンドラー側で外部APIに問い合わせる
		protected := api.Group("/dashboard")
		protected.Use(auth.RequireSessionCookie("/login"))
		{
			protected.GET("", dashboardHandler.Show)
		}
	}
}
