package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/testutil/memrepo"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	indexed map[uint]string
	deleted []uint
	hits    []uint
	err     error
}

func (f *fakeIndex) IndexSujet(s *entity.Sujet) error {
	if f.indexed == nil {
		f.indexed = map[uint]string{}
	}
	f.indexed[s.ID] = s.Name
	return nil
}

func (f *fakeIndex) DeleteSujet(id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchSujets(string, int) ([]uint, error) {
	return f.hits, f.err
}

func setup(t *testing.T, index *fakeIndex) (SujetService, *memrepo.Store, *entity.Category) {
	t.Helper()
	store := memrepo.New()
	cat := &entity.Category{Name: "TCG"}
	require.NoError(t, store.Categories.Create(context.Background(), cat))
	var svc SujetService
	if index == nil {
		svc = NewSujetService(store.Sujets, store.Categories, nil, zerolog.Nop())
	} else {
		svc = NewSujetService(store.Sujets, store.Categories, index, zerolog.Nop())
	}
	return svc, store, cat
}

func TestCreateSujet(t *testing.T) {
	index := &fakeIndex{}
	svc, _, cat := setup(t, index)
	ctx := context.Background()

	sujet, err := svc.CreateSujet(ctx, " <i>Cartes rares</i> ", cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cartes rares", sujet.Name)
	assert.Equal(t, cat.ID, sujet.CategoryID)
	assert.False(t, sujet.CreatedAt.IsZero())
	assert.Equal(t, "Cartes rares", index.indexed[sujet.ID])

	got, err := svc.GetSujet(ctx, sujet.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "TCG", got.Category.Name)
}

func TestCreateSujetValidation(t *testing.T) {
	svc, _, cat := setup(t, nil)
	ctx := context.Background()

	_, err := svc.CreateSujet(ctx, "Test", 999)
	fe, ok := apperror.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "category", fe.Field)

	_, err = svc.CreateSujet(ctx, "  \t ", cat.ID)
	fe, ok = apperror.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "name", fe.Field)
}

func TestCreateSujetKeepsNameAsTyped(t *testing.T) {
	svc, _, cat := setup(t, nil)

	sujet, err := svc.CreateSujet(context.Background(), "Quel deck <3 pour débuter ?", cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quel deck <3 pour débuter ?", sujet.Name)
}

func TestListSujetsFiltersByCategory(t *testing.T) {
	svc, store, cat := setup(t, nil)
	ctx := context.Background()
	other := &entity.Category{Name: "Les parcs"}
	require.NoError(t, store.Categories.Create(ctx, other))

	_, err := svc.CreateSujet(ctx, "Cartes", cat.ID)
	require.NoError(t, err)
	_, err = svc.CreateSujet(ctx, "Disneyland", other.ID)
	require.NoError(t, err)

	all, err := svc.ListSujets(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListSujets(ctx, &other.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Disneyland", filtered[0].Name)

	newest, err := svc.ListSujetsNewestFirst(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Disneyland", newest[0].Name)
}

func TestDeleteSujetCascadesComments(t *testing.T) {
	index := &fakeIndex{}
	svc, store, cat := setup(t, index)
	ctx := context.Background()

	sujet, err := svc.CreateSujet(ctx, "Cartes", cat.ID)
	require.NoError(t, err)
	c := entity.NewComment("Premier commentaire", nil)
	c.AttachTo(sujet)
	require.NoError(t, store.Comments.Create(ctx, c))

	require.NoError(t, svc.DeleteSujet(ctx, sujet.ID))
	count, _ := store.Comments.Count(ctx)
	assert.Zero(t, count)
	assert.Equal(t, []uint{sujet.ID}, index.deleted)

	assert.ErrorIs(t, svc.DeleteSujet(ctx, sujet.ID), apperror.ErrNotFound)
}

func TestSearch(t *testing.T) {
	index := &fakeIndex{}
	svc, _, cat := setup(t, index)
	ctx := context.Background()

	a, _ := svc.CreateSujet(ctx, "Cartes rares", cat.ID)
	b, _ := svc.CreateSujet(ctx, "Echanges de cartes", cat.ID)

	index.hits = []uint{b.ID, a.ID}
	found, err := svc.Search(ctx, "cartes")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, b.ID, found[0].ID)

	index.err = errors.New("meilisearch down")
	found, err = svc.Search(ctx, "rares")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTopDiscussed(t *testing.T) {
	svc, store, cat := setup(t, nil)
	ctx := context.Background()

	quiet, _ := svc.CreateSujet(ctx, "Calme", cat.ID)
	busy, _ := svc.CreateSujet(ctx, "Animé", cat.ID)
	for i := 0; i < 3; i++ {
		c := entity.NewComment("Un commentaire", nil)
		c.AttachTo(busy)
		require.NoError(t, store.Comments.Create(ctx, c))
	}

	top, err := svc.TopDiscussed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, busy.ID, top[0].Sujet.ID)
	assert.Equal(t, int64(3), top[0].NbComments)
	assert.Equal(t, quiet.ID, top[1].Sujet.ID)
	assert.Zero(t, top[1].NbComments)
}
