package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/communityforum/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, r *Renderer, name string, data gin.H) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestRendererLoadsEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{
		"home", "login", "register", "register_confirmation", "error",
		"forum_index", "forum_search", "sujet_detail", "comment_edit",
		"reset_request", "reset_check_email", "reset_reset", "profil", "profil_edit",
		"admin_dashboard", "admin_members", "admin_member_form", "admin_categories",
		"admin_category_form", "admin_sujets", "admin_sujet_form", "admin_comments",
		"admin_comment_form", "footer",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("nope"))
}

func TestRenderLayoutGlobals(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	admin := &entity.User{ID: 1, Username: "ElsaQueen", Roles: entity.RoleSet{entity.RoleAdmin}}
	body := renderPage(t, r, "error", gin.H{
		"status":      404,
		"message":     "Page introuvable.",
		"path":        "/nope",
		"currentUser": admin,
		"nbMembers":   int64(12),
		"flashes":     map[string][]string{"success": {"Bien joué"}},
	})

	assert.Contains(t, body, "Erreur 404")
	assert.Contains(t, body, "Page introuvable.")
	assert.Contains(t, body, "ElsaQueen")
	assert.Contains(t, body, `href="/admin"`)
	assert.Contains(t, body, "12 membres inscrits")
	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, "Bien joué")
}

func TestRenderSujetDetailEscapesAndOffersEdit(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	sujet := &entity.Sujet{ID: 3, Name: "Decks", CreatedAt: time.Now(), Category: &entity.Category{ID: 1, Name: "Pokémon"}}
	comments := []*entity.Comment{
		{ID: 7, Text: "<b>salut</b>", Author: "alice@example.com", Date: time.Now()},
		{ID: 8, Text: "bonjour", Author: entity.AnonymousAuthor, Date: time.Now()},
	}
	body := renderPage(t, r, "sujet_detail", gin.H{
		"subject":    sujet,
		"comments":   comments,
		"identifier": "alice@example.com",
		"path":       "/forum/subject/3",
	})

	assert.Contains(t, body, "&lt;b&gt;salut&lt;/b&gt;")
	assert.Contains(t, body, `href="/comment/7/edit"`)
	assert.NotContains(t, body, `href="/comment/8/edit"`)
}

func TestRenderFooterFragment(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	body := renderPage(t, r, "footer", gin.H{"nbMembers": int64(3)})
	assert.Contains(t, body, "3 membres inscrits")
	assert.NotContains(t, body, "<html")
}

func TestMissingTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, r.Instance("nope", nil).Render(w))
}
