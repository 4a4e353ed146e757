package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResetPasswordRequestExpiry(t *testing.T) {
	now := time.Now()
	user := &User{ID: 1}

	future := NewResetPasswordRequest(user, now.Add(time.Hour), "sel", "hash")
	assert.False(t, future.IsExpired(now))
	assert.False(t, future.IsExpiredNow())

	past := NewResetPasswordRequest(user, now.Add(-time.Second), "sel", "hash")
	assert.True(t, past.IsExpired(now))
	assert.True(t, past.IsExpiredNow())

	exact := NewResetPasswordRequest(user, now, "sel", "hash")
	assert.True(t, exact.IsExpired(now))
}
