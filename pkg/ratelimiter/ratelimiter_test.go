package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientAllowsEverything(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "127.0.0.1", "comment", time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.NoError(t, l.Check(ctx, "127.0.0.1", "comment", time.Minute))

	var nilLimiter *Limiter
	assert.NoError(t, nilLimiter.Check(ctx, "x", "y", time.Second))
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Message: "wait", RetryAfter: time.Second}
	assert.EqualError(t, err, "wait")
}
