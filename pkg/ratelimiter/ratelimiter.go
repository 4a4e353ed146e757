package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitError carries how long the caller has to wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type Limiter struct {
	rdb *redis.Client
}

// New returns a limiter. A nil client allows everything.
func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", subject, action)
}

// Allow records one hit for subject/action and reports whether it fits in window.
func (l *Limiter) Allow(ctx context.Context, subject, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(subject, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (l *Limiter) TTL(ctx context.Context, subject, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(subject, action)).Result()
}

// Check is Allow returning a *RateLimitError when the window is still open.
func (l *Limiter) Check(ctx context.Context, subject, action string, window time.Duration) error {
	allowed, err := l.Allow(ctx, subject, action, window)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}
	ttl, _ := l.TTL(ctx, subject, action)
	return &RateLimitError{
		Message:    fmt.Sprintf("Merci de patienter %d secondes avant de réessayer.", int(ttl.Seconds())+1),
		RetryAfter: ttl,
	}
}
