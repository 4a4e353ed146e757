package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/communityforum/internal/testutil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindByName(t *testing.T) {
	db, mock := testutil.MockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Pokémon"))

	cat, err := repo.FindByName(context.Background(), "Pokémon")
	require.NoError(t, err)
	assert.Equal(t, uint(3), cat.ID)
}

func TestFindByNameMissing(t *testing.T) {
	db, mock := testutil.MockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := NewCategoryRepository(db).FindByName(context.Background(), "Inconnue")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCountCategories(t *testing.T) {
	db, mock := testutil.MockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	n, err := NewCategoryRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
