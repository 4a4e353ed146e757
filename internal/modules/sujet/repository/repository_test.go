package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/communityforum/internal/testutil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTopDiscussed(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewSujetRepository(db)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT s\.id, COUNT\(c\.id\) AS nb_comments`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nb_comments"}).
			AddRow(2, 3).
			AddRow(1, 0))
	mock.ExpectQuery(`SELECT \* FROM "sujets" WHERE id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "category_id"}).
			AddRow(1, "Règles du forum", created, 1).
			AddRow(2, "Decks", created, 1))
	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE "categories"\."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Pokémon"))

	top, err := repo.FindTopDiscussed(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, uint(2), top[0].Sujet.ID)
	assert.Equal(t, int64(3), top[0].NbComments)
	require.NotNil(t, top[0].Sujet.Category)
	assert.Equal(t, "Pokémon", top[0].Sujet.Category.Name)

	assert.Equal(t, uint(1), top[1].Sujet.ID)
	assert.Zero(t, top[1].NbComments)
}

func TestFindTopDiscussedEmpty(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewSujetRepository(db)

	mock.ExpectQuery(`SELECT s\.id, COUNT\(c\.id\) AS nb_comments`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nb_comments"}))

	top, err := repo.FindTopDiscussed(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestCountSujets(t *testing.T) {
	db, mock := testutil.MockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sujets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	n, err := NewSujetRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
}

func TestSearchEscapesWildcards(t *testing.T) {
	db, mock := testutil.MockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "sujets" WHERE name ILIKE \$1 ESCAPE '\\' ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(`%100\%\_a\\b%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "category_id"}))

	sujets, err := NewSujetRepository(db).Search(context.Background(), `100%_a\b`, 10)
	require.NoError(t, err)
	assert.Empty(t, sujets)
}
