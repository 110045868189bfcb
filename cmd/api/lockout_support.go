package main

import (
	"log"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/account-portal/internal/auth"
	"github.com/yourusername/account-portal/internal/config"
)

// setupLimiter はログイン試行制限ストアを組み立てます。
// LOCKOUT_REDIS_URL が設定されていればインスタンス間で共有できる Redis 実装を、
// 無ければプロセス内メモリ実装を使います。
func setupLimiter(cfg *config.Config) (auth.AttemptLimiter, error) {
	if cfg.LockoutRedisURL == "" {
		return auth.NewMemoryAttemptLimiter(), nil
	}

	opt, err := redis.ParseURL(cfg.LockoutRedisURL)
	if err != nil {
		return nil, err
	}
	return auth.NewRedisAttemptLimiter(redis.NewClient(opt), log.Default()), nil
}
