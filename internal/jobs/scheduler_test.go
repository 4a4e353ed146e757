package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls int
	n     int64
	err   error
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	purger := &fakePurger{n: 3}

	require.NoError(t, s.Register(NewPurgeResetRequests(purger, "0 0 * * * *", zerolog.Nop())))
	assert.Equal(t, []string{PurgeResetRequestsName}, s.Names())

	require.NoError(t, s.RunByName(context.Background(), PurgeResetRequestsName))
	assert.Equal(t, 1, purger.calls)

	assert.Error(t, s.RunByName(context.Background(), "unknown"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	err := s.Register(NewPurgeResetRequests(&fakePurger{}, "every hour", zerolog.Nop()))
	assert.Error(t, err)
	assert.Empty(t, s.Names())
}

func TestManualOnlyJob(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	purger := &fakePurger{err: errors.New("db down")}

	require.NoError(t, s.Register(NewPurgeResetRequests(purger, "", zerolog.Nop())))
	assert.EqualError(t, s.RunByName(context.Background(), PurgeResetRequestsName), "db down")
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	s.Start()
	s.Stop(context.Background())
}
