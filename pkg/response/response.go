package response

import (
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	CurrentUserKey = "user"
	MemberCountKey = "nbMembers"

	FlashSuccess = "success"
	FlashError   = "error"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "La requête est invalide.",
	http.StatusForbidden:           "Accès refusé.",
	http.StatusNotFound:            "Page introuvable.",
	http.StatusConflict:            "Cette ressource existe déjà.",
	http.StatusTooManyRequests:     "Trop de requêtes, réessayez plus tard.",
	http.StatusInternalServerError: "Une erreur interne est survenue.",
}

func Flash(c *gin.Context, kind, message string) {
	session.Get(c).AddFlash(kind, message)
}

// HTML renders a page with the layout globals (current user, flashes, member
// count) merged into data, after writing the session cookie.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := session.Get(c)
	data["flashes"] = sess.PopFlashes()
	if user, ok := c.Get(CurrentUserKey); ok {
		data["currentUser"] = user
	}
	if count, ok := c.Get(MemberCountKey); ok {
		data["nbMembers"] = count
	}
	data["path"] = c.Request.URL.Path

	if err := sess.Save(c); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to save session")
	}
	c.HTML(status, name, data)
}

// Redirect answers with 303 See Other after writing the session cookie.
func Redirect(c *gin.Context, location string) {
	if err := session.Get(c).Save(c); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to save session")
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Error renders the error page matching err and aborts the chain.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}
	if code == http.StatusUnauthorized {
		Redirect(c, "/login")
		c.Abort()
		return
	}

	message := apperror.Message(err)
	if message == "" {
		message = statusMessages[code]
	}
	if message == "" {
		message = http.StatusText(code)
	}
	HTML(c, code, "error", gin.H{"status": code, "message": message})
	c.Abort()
}

// ParamID reads a numeric route parameter. Anything else is a 404, the same
// as an unknown id.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, c.Param(name), apperror.ErrNotFound)
	}
	return uint(id), nil
}
