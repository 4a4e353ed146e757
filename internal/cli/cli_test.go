package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/server"
	"anoa.com/communityforum/internal/testutil"
	"anoa.com/communityforum/internal/testutil/memrepo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store  *memrepo.Store
	mail   *testutil.MailRecorder
	opened int
	closed int
}

func newHarness() *harness {
	return &harness{store: memrepo.New(), mail: &testutil.MailRecorder{}}
}

func (h *harness) open(context.Context) (*Backend, error) {
	h.opened++
	return &Backend{
		Config: &config.Config{
			MailerFrom:    "noreply@forum.test",
			BaseURL:       "http://forum.test",
			ResetLifetime: time.Hour,
			ResetThrottle: time.Hour,
		},
		Deps: server.Dependencies{
			Users:         h.store.Users,
			Categories:    h.store.Categories,
			Sujets:        h.store.Sujets,
			Comments:      h.store.Comments,
			ResetRequests: h.store.ResetRequests,
			Mailer:        h.mail,
		},
		Log: zerolog.Nop(),
		Close: func() error {
			h.closed++
			return nil
		},
	}, nil
}

func run(t *testing.T, h *harness, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(h.open)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand(newHarness().open)
	assert.Equal(t, "forumctl", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"create-user", "fixtures", "test-email", "reset-requests"} {
		assert.True(t, names[want], want)
	}
}

func TestCreateUser(t *testing.T) {
	h := newHarness()

	out, err := run(t, h, "create-user", "--username", "ElsaQueen", "--email", "elsa.qn@mail.com", "--password", "elsa", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Membre ElsaQueen créé")
	assert.Equal(t, 1, h.opened)
	assert.Equal(t, 1, h.closed)

	user, err := h.store.Users.FindByEmail(context.Background(), "elsa.qn@mail.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.IsActive)
	assert.True(t, user.IsVerified)

	_, err = run(t, h, "create-user", "--username", "Other", "--email", "elsa.qn@mail.com", "--password", "x")
	assert.Error(t, err)
}

func TestCreateUserRequiresFlags(t *testing.T) {
	h := newHarness()

	_, err := run(t, h, "create-user", "--username", "bob")
	assert.Error(t, err)
	assert.Zero(t, h.opened)
}

func TestFixturesLoad(t *testing.T) {
	h := newHarness()

	out, err := run(t, h, "fixtures", "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Fixtures chargées.")

	n, err := h.store.Sujets.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	_, err = run(t, h, "fixtures", "load", "--file", "/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestTestEmail(t *testing.T) {
	h := newHarness()

	out, err := run(t, h, "test-email", "--to", "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@example.com")

	msg, ok := h.mail.Last()
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "noreply@forum.test", msg.From)

	h.mail.Err = errors.New("smtp down")
	_, err = run(t, h, "test-email", "--to", "admin@example.com")
	assert.ErrorContains(t, err, "smtp down")
}

func TestPurgeResetRequests(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	user := testutil.ActiveUser(t, "alice", "alice@example.com", "secret123")
	require.NoError(t, h.store.Users.Create(ctx, user))
	expired := entity.NewResetPasswordRequest(user, time.Now().Add(-time.Minute), "selector", "hash")
	require.NoError(t, h.store.ResetRequests.Create(ctx, expired))

	out, err := run(t, h, "reset-requests", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "1 demande(s)")
	assert.Zero(t, h.store.ResetRequests.Count())
}
