package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCommentAnonymous(t *testing.T) {
	c := NewComment("Bonjour à tous", nil)
	assert.Equal(t, AnonymousAuthor, c.Author)
	assert.Nil(t, c.UserID)
	assert.False(t, c.Date.IsZero())
}

func TestNewCommentWithAuthor(t *testing.T) {
	u := &User{ID: 7, Email: "magic92@mail.com"}
	c := NewComment("Bonjour à tous", u)

	assert.Equal(t, "magic92@mail.com", c.Author)
	if assert.NotNil(t, c.UserID) {
		assert.Equal(t, uint(7), *c.UserID)
	}
}

func TestCommentAttachDetach(t *testing.T) {
	s := &Sujet{ID: 4, Name: "Disneyland Paris"}
	c := NewComment("Super sortie", nil)

	c.AttachTo(s)
	assert.Equal(t, uint(4), c.SubjectID)
	assert.Same(t, s, c.Subject)

	c.Detach()
	assert.Nil(t, c.Subject)
	assert.Zero(t, c.SubjectID)
}

func TestCommentIsOwnedBy(t *testing.T) {
	c := &Comment{Author: "magic92@mail.com"}
	assert.True(t, c.IsOwnedBy("magic92@mail.com"))
	assert.False(t, c.IsOwnedBy("MAGIC92@mail.com"))
	assert.False(t, c.IsOwnedBy(""))

	anonymous := &Comment{Author: ""}
	assert.False(t, anonymous.IsOwnedBy(""))
}
