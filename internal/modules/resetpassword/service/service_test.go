package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/testutil"
	"anoa.com/communityforum/internal/testutil/memrepo"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *resetPasswordService
	store *memrepo.Store
	mail  *testutil.MailRecorder
	user  *entity.User
	clock time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.New()
	user := testutil.ActiveUser(t, "alice", "alice@example.com", "ancien-mdp")
	require.NoError(t, store.Users.Create(context.Background(), user))

	f := &fixture{
		store: store,
		mail:  &testutil.MailRecorder{},
		user:  user,
		clock: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	svc := NewResetPasswordService(store.ResetRequests, store.Users, f.mail, testutil.PwnedList{"password123": true}, Config{
		From:       "noreply@example.com",
		BaseURL:    "http://localhost:8080",
		SigningKey: "test-signing-key",
		Lifetime:   time.Hour,
		Throttle:   time.Hour,
	}, zerolog.Nop())
	f.svc = svc.(*resetPasswordService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestRequestResetSendsLink(t *testing.T) {
	f := setup(t)

	token, err := f.svc.RequestReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Len(t, token.Value, 40)
	assert.Equal(t, time.Hour, token.Lifetime())
	assert.Equal(t, 1, f.store.ResetRequests.Count())

	msg, ok := f.mail.Last()
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Votre demande de réinitialisation de mot de passe", msg.Subject)
	assert.True(t, strings.Contains(msg.HTML, "/reset-password/reset/"+token.Value))
	assert.Contains(t, msg.HTML, "1 heure")
}

func TestRequestResetLifetimeWithSubSecondClock(t *testing.T) {
	f := setup(t)
	f.clock = time.Date(2024, 5, 1, 10, 0, 0, 657_000_000, time.UTC)

	token, err := f.svc.RequestReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, token.Lifetime())
	assert.Equal(t, "1 heure", FormatLifetime(token.Lifetime()))

	msg, ok := f.mail.Last()
	require.True(t, ok)
	assert.Contains(t, msg.HTML, "Ce lien expirera dans 1 heure.")
	assert.NotContains(t, msg.HTML, "60 minutes")
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	f := setup(t)

	token, err := f.svc.RequestReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, token)
	assert.Empty(t, f.mail.Messages())
}

func TestRequestResetIsThrottled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	f.clock = f.clock.Add(10 * time.Minute)
	_, err = f.svc.RequestReset(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrTooManyRequests)
	assert.Len(t, f.mail.Messages(), 1)

	// once the first request expired it is collected and a new one is allowed
	f.clock = f.clock.Add(time.Hour)
	token, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotNil(t, token)
	assert.Equal(t, 1, f.store.ResetRequests.Count())
}

func TestRequestResetMailFailure(t *testing.T) {
	f := setup(t)
	f.mail.Err = errors.New("smtp down")

	_, err := f.svc.RequestReset(context.Background(), "alice@example.com")
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	user, err := f.svc.ValidateTokenAndFetchUser(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"too short", "abc", ErrInvalidToken},
		{"unknown selector", strings.Repeat("x", 40), ErrInvalidToken},
		{"tampered verifier", token.Value[:20] + strings.Repeat("z", 20), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ValidateTokenAndFetchUser(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateTokenExpired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	f.clock = token.ExpiresAt
	_, err = f.svc.ValidateTokenAndFetchUser(ctx, token.Value)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, "Le lien de réinitialisation a expiré.", Reason(err))
}

func TestResetPassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	token, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, token.Value, "password123")
	fe, ok := apperror.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "plainPassword", fe.Field)
	assert.Equal(t, 1, f.store.ResetRequests.Count())

	user, err := f.svc.ResetPassword(ctx, token.Value, "nouveau-mdp-solide")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nouveau-mdp-solide")))
	assert.Zero(t, f.store.ResetRequests.Count())

	stored, err := f.store.Users.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)

	_, err = f.svc.ResetPassword(ctx, token.Value, "encore-un-autre")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurgeExpired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = f.clock.Add(2 * time.Hour)
	n, err = f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFakeTokenAndLifetimeWording(t *testing.T) {
	f := setup(t)
	assert.Equal(t, time.Hour, f.svc.FakeToken().Lifetime())

	assert.Equal(t, "1 heure", FormatLifetime(time.Hour))
	assert.Equal(t, "3 heures", FormatLifetime(3*time.Hour))
	assert.Equal(t, "15 minutes", FormatLifetime(15*time.Minute))
	assert.Equal(t, "1 heure", FormatLifetime(59*time.Minute+59*time.Second))
	assert.Equal(t, "quelques secondes", FormatLifetime(10*time.Second))
}
