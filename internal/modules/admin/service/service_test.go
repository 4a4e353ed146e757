package admin

import (
	"context"
	"testing"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/admin/dto"
	statService "anoa.com/communityforum/internal/modules/stat/service"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/internal/testutil"
	"anoa.com/communityforum/internal/testutil/memrepo"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopSender struct{}

func (nopSender) SendEmailConfirmation(context.Context, *entity.User) {}

func setup(t *testing.T) (AdminService, *memrepo.Store) {
	t.Helper()
	store := memrepo.New()
	log := zerolog.Nop()
	users := userService.NewUserService(store.Users, nopSender{}, nil, log)
	stats := statService.NewStatService(store.Users, nil, 0, log)
	svc := NewAdminService(store.Users, store.Categories, store.Sujets, store.Comments, users, stats, log)
	return svc, store
}

func TestDashboard(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Users.Create(ctx, testutil.ActiveUser(t, "alice", "alice@example.com", "secret123")))
	cat := &entity.Category{Name: "Jeux"}
	require.NoError(t, store.Categories.Create(ctx, cat))
	sujet := entity.NewSujet("Zelda")
	sujet.AttachTo(cat)
	require.NoError(t, store.Sujets.Create(ctx, sujet))
	comment := entity.NewComment("Trop bien", nil)
	comment.AttachTo(sujet)
	require.NoError(t, store.Comments.Create(ctx, comment))

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.DashboardStats{Users: 1, Categories: 1, Sujets: 1, Comments: 1}, *stats)
}

func TestCreateMember(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, dto.MemberRequest{Username: "carol", Email: "carol@example.com"})
	fe, ok := apperror.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "password", fe.Field)

	user, err := svc.CreateMember(ctx, dto.MemberRequest{Username: "carol", Email: "carol@example.com", Password: "motdepasse", Admin: true})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsVerified)
	assert.True(t, user.IsAdmin())

	_, err = svc.CreateMember(ctx, dto.MemberRequest{Username: "caroline", Email: "carol@example.com", Password: "motdepasse"})
	fe, ok = apperror.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "email", fe.Field)

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestUpdateMember(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	alice := testutil.ActiveUser(t, "alice", "alice@example.com", "secret123", entity.RoleAdmin)
	require.NoError(t, store.Users.Create(ctx, alice))
	oldHash := alice.PasswordHash

	updated, err := svc.UpdateMember(ctx, alice.ID, dto.MemberRequest{Username: "alice2", Email: "alice2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, oldHash, updated.PasswordHash)
	assert.False(t, updated.IsAdmin())
	assert.Contains(t, updated.GetRoles(), entity.RoleUser)

	updated, err = svc.UpdateMember(ctx, alice.ID, dto.MemberRequest{Username: "alice2", Email: "alice2@example.com", Password: "nouveau", Admin: true})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("nouveau")))

	_, err = svc.UpdateMember(ctx, 999, dto.MemberRequest{Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteMemberKeepsComments(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	alice := testutil.ActiveUser(t, "alice", "alice@example.com", "secret123")
	require.NoError(t, store.Users.Create(ctx, alice))
	cat := &entity.Category{Name: "Jeux"}
	require.NoError(t, store.Categories.Create(ctx, cat))
	sujet := entity.NewSujet("Mario")
	sujet.AttachTo(cat)
	require.NoError(t, store.Sujets.Create(ctx, sujet))
	comment := entity.NewComment("Salut", alice)
	comment.AttachTo(sujet)
	require.NoError(t, store.Comments.Create(ctx, comment))

	require.NoError(t, svc.DeleteMember(ctx, alice.ID))
	assert.ErrorIs(t, svc.DeleteMember(ctx, alice.ID), apperror.ErrNotFound)

	kept, err := store.Comments.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.UserID)
	assert.Equal(t, "alice@example.com", kept.Author)
}
