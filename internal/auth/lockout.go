package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/redis"
)

// attemptStore is the slice of the redis client the lockout policy needs.
type attemptStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LoginAttemptKey(identifier string) string
}

// LockoutPolicy counts consecutive failed logins per identifier and locks
// the identifier once the configured threshold is reached. The counter key
// expires on its own, so a lock always clears after the window.
type LockoutPolicy struct {
	store       attemptStore
	maxAttempts int
	window      time.Duration
}

func NewLockoutPolicy(store attemptStore, cfg config.AuthLockoutConfig) *LockoutPolicy {
	return &LockoutPolicy{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.LockoutWindow,
	}
}

// Identifier builds the lockout key material for a login attempt. Store and
// user code together name one principal; the same user code at another store
// is tracked separately.
func Identifier(storeCode, userCode string) string {
	return storeCode + ":" + userCode
}

// RecordFailure bumps the failure counter. The window TTL is set only when
// the counter is created, so a burst of failures cannot keep pushing the
// lock further into the future.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, identifier string) (int64, error) {
	return p.store.IncrWithTTL(ctx, p.store.LoginAttemptKey(identifier), p.window)
}

// IsLocked reports whether the identifier has reached the failure threshold.
// A missing or unparsable counter counts as unlocked.
func (p *LockoutPolicy) IsLocked(ctx context.Context, identifier string) (bool, error) {
	raw, err := p.store.Get(ctx, p.store.LoginAttemptKey(identifier))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, nil
	}

	return count >= int64(p.maxAttempts), nil
}

// Reset clears the failure counter after a successful login.
func (p *LockoutPolicy) Reset(ctx context.Context, identifier string) error {
	return p.store.Del(ctx, p.store.LoginAttemptKey(identifier))
}
