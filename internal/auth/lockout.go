package auth

import (
	"context"
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// AttemptLimiter はログイン試行のブルートフォース対策ストアです。
// 単一プロセスならインメモリ実装、複数インスタンス構成なら Redis 実装を使います。
type AttemptLimiter interface {
	// CheckLock はロック中なら解除までの残り時間と true を返します。
	CheckLock(ctx context.Context, ip string) (time.Duration, bool)
	// RecordFailure は失敗を記録し、残り試行回数を返します。
	RecordFailure(ctx context.Context, ip string) int
	// Reset は成功時に試行記録を消します。正当なユーザーがロックされないようにするためです。
	Reset(ctx context.Context, ip string)
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryAttemptLimiter はプロセス内メモリで試行回数を管理します。
type MemoryAttemptLimiter struct {
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryAttemptLimiter は MemoryAttemptLimiter を作成します。
func NewMemoryAttemptLimiter() *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{
		attempts: make(map[string]*attemptState),
	}
}

// CheckLock はロック状態を確認します。
func (m *MemoryAttemptLimiter) CheckLock(_ context.Context, ip string) (time.Duration, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[ip]
	if !ok {
		return 0, false
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0, false
	}
	return time.Until(state.lockedUntil), true
}

// RecordFailure は失敗を記録します。上限に達するとロックを開始します。
func (m *MemoryAttemptLimiter) RecordFailure(_ context.Context, ip string) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := time.Now()
	state, ok := m.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		m.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset は試行記録を削除します。
func (m *MemoryAttemptLimiter) Reset(_ context.Context, ip string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, ip)
}
