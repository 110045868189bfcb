package auth

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failKeyPrefix = "loginfail:"
	lockKeyPrefix = "loginlock:"
)

// RedisAttemptLimiter は試行回数を Redis で共有します。
// 複数インスタンスで動かす場合はこちらを使います。
// Redis 障害時はフェイルオープン（制限なし）とし、ログインを止めません。
type RedisAttemptLimiter struct {
	rdb    *redis.Client
	logger *log.Logger
}

// NewRedisAttemptLimiter は RedisAttemptLimiter を作成します。
func NewRedisAttemptLimiter(rdb *redis.Client, logger *log.Logger) *RedisAttemptLimiter {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisAttemptLimiter{
		rdb:    rdb,
		logger: logger,
	}
}

// CheckLock はロックキーの残りTTLでロック状態を判定します。
func (r *RedisAttemptLimiter) CheckLock(ctx context.Context, ip string) (time.Duration, bool) {
	ttl, err := r.rdb.TTL(ctx, lockKeyPrefix+ip).Result()
	if err != nil {
		r.logger.Printf("WARN: lockout check failed: %v", err)
		return 0, false
	}
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

// RecordFailure は失敗カウンタを加算し、上限到達でロックキーを設定します。
func (r *RedisAttemptLimiter) RecordFailure(ctx context.Context, ip string) int {
	key := failKeyPrefix + ip
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Printf("WARN: lockout record failed: %v", err)
		return maxLoginAttempts
	}
	if count == 1 {
		// 初回失敗から loginWindow だけカウントを保持する
		if err := r.rdb.Expire(ctx, key, loginWindow).Err(); err != nil {
			r.logger.Printf("WARN: lockout expire failed: %v", err)
		}
	}
	if count >= int64(maxLoginAttempts) {
		if err := r.rdb.Set(ctx, lockKeyPrefix+ip, "1", lockDuration).Err(); err != nil {
			r.logger.Printf("WARN: lockout set failed: %v", err)
		}
		return 0
	}

	remaining := maxLoginAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset は失敗カウンタとロックキーを削除します。
func (r *RedisAttemptLimiter) Reset(ctx context.Context, ip string) {
	if err := r.rdb.Del(ctx, failKeyPrefix+ip, lockKeyPrefix+ip).Err(); err != nil {
		r.logger.Printf("WARN: lockout reset failed: %v", err)
	}
}
