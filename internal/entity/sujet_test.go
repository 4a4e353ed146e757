package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSujetSetsCreatedAt(t *testing.T) {
	s := NewSujet("Les parcs")
	assert.False(t, s.CreatedAt.IsZero())
	assert.Nil(t, s.Category)
}

func TestSujetAttachIsIdempotent(t *testing.T) {
	cat := &Category{ID: 3, Name: "TCG"}
	s := NewSujet("Cartes rares")

	s.AttachTo(cat)
	s.AttachTo(cat)

	assert.True(t, s.BelongsTo(cat))
	assert.Equal(t, uint(3), s.CategoryID)
	assert.Same(t, cat, s.Category)
}

func TestSujetDetachClearsBackReference(t *testing.T) {
	cat := &Category{ID: 3, Name: "TCG"}
	s := NewSujet("Cartes rares")
	s.AttachTo(cat)

	s.Detach()

	assert.Nil(t, s.Category)
	assert.Zero(t, s.CategoryID)
	assert.False(t, s.BelongsTo(cat))
}
