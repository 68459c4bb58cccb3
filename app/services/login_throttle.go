package services

import (
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per account. Keys are compared
// case-insensitively so "Admin@x" and "admin@x" share one bucket.
type LoginThrottle interface {
	Allow(key string) bool
	Reset(key string)
}

type loginThrottleImpl struct {
	limiters *expiringMap[*rate.Limiter]
	every    rate.Limit
	burst    int
}

// NewLoginThrottle allows burst attempts per key, refilled at one attempt per
// window/burst. Idle buckets are forgotten after window.
func NewLoginThrottle(burst int, window time.Duration) LoginThrottle {
	if burst <= 0 {
		burst = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &loginThrottleImpl{
		limiters: newExpiringMap[*rate.Limiter](window, time.Now),
		every:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
	}
}

func (t *loginThrottleImpl) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	limiter := t.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(t.every, t.burst)
	})
	return limiter.Allow()
}

// Reset forgets the bucket, typically after a successful login.
func (t *loginThrottleImpl) Reset(key string) {
	t.limiters.Delete(strings.ToLower(strings.TrimSpace(key)))
}
