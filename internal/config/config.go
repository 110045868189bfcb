// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 外部認証API設定
	AuthAPIURL        string // 外部認証APIのベースURL
	AuthAPIKey        string // 外部認証APIに渡すAPIキー（X-API-Keyヘッダー）
	AuthAPITimeoutSec int    // 外部API呼び出しのタイムアウト（秒）

	// フロントエンド設定
	FrontendURL string // 絶対URL組み立てに使用する信頼済みオリジン

	// ログイン試行制限設定
	LockoutRedisURL string // 指定時はRedisで試行回数を共有（空ならインメモリ）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// 外部認証API設定
		AuthAPIURL:        getEnv("AUTH_API_URL", "http://api:8000"),
		AuthAPIKey:        getEnv("API_KEY", ""),
		AuthAPITimeoutSec: getEnvAsInt("AUTH_API_TIMEOUT_SECONDS", 5),

		// フロントエンド設定
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// ログイン試行制限設定
		LockoutRedisURL: getEnv("LOCKOUT_REDIS_URL", ""),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発ではAPIキーは任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.AuthAPIURL == "" {
			return fmt.Errorf("AUTH_API_URL is required in release mode")
		}
		if c.AuthAPIKey == "" {
			return fmt.Errorf("API_KEY is required in release mode")
		}
	}
	if c.AuthAPITimeoutSec <= 0 {
		return fmt.Errorf("AUTH_API_TIMEOUT_SECONDS must be positive")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
