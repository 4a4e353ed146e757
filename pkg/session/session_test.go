package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(store.Middleware())
	r.GET("/write", func(c *gin.Context) {
		sess := Get(c)
		sess.SetUserID(42)
		sess.AddFlash("success", "Bienvenue")
		sess.Set("last_username", "elsa.qn@mail.com")
		_ = sess.Save(c)
		c.String(http.StatusOK, sess.ID())
	})
	r.GET("/read", func(c *gin.Context) {
		sess := Get(c)
		flashes := sess.PopFlashes()
		_ = sess.Save(c)
		c.JSON(http.StatusOK, gin.H{
			"sid":      sess.ID(),
			"uid":      sess.UserID(),
			"flashes":  flashes,
			"username": sess.Get("last_username"),
		})
	})
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewStore("secret", time.Hour, false)
	r := newEngine(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/write", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	sid := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `"sid":"`+sid+`"`)
	assert.Contains(t, body, `"uid":42`)
	assert.Contains(t, body, `"success":["Bienvenue"]`)
	assert.Contains(t, body, `"username":"elsa.qn@mail.com"`)
}

func TestTamperedCookieStartsNewSession(t *testing.T) {
	store := NewStore("secret", time.Hour, false)
	other := NewStore("another-secret", time.Hour, false)
	r := newEngine(store)

	w := httptest.NewRecorder()
	newEngine(other).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/write", nil))
	forged := w.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(forged)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"uid":0`)
}

func TestSessionValues(t *testing.T) {
	s := &Session{data: payload{ID: "x"}}
	s.Set("reset_token", "abc")
	assert.Equal(t, "abc", s.Pop("reset_token"))
	assert.Empty(t, s.Get("reset_token"))

	s.SetUserID(3)
	s.Regenerate()
	assert.NotEqual(t, "x", s.ID())
	assert.Equal(t, uint(3), s.UserID())

	s.Clear()
	assert.Zero(t, s.UserID())
}

func TestGetWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	sess := Get(c)
	require.NotNil(t, sess)
	assert.Same(t, sess, Get(c))
	assert.NoError(t, sess.Save(c))
}
