package middleware

import (
	"errors"

	"anoa.com/communityforum/internal/entity"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthMiddleware struct {
	users userService.UserService
}

func NewAuthMiddleware(users userService.UserService) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// LoadUser resolves the session user and stores it under response.CurrentUserKey.
// A session pointing at a deleted or deactivated account is logged out.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Get(c)
		if id := sess.UserID(); id != 0 {
			user, err := m.users.GetByID(c.Request.Context(), id)
			switch {
			case err == nil && user.IsActive:
				c.Set(response.CurrentUserKey, user)
			case err == nil || errors.Is(err, apperror.ErrNotFound):
				sess.SetUserID(0)
			default:
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Uint("user_id", id).Msg("failed to load session user")
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Redirect(c, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Redirect(c, "/login")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			response.Error(c, apperror.ErrForbidden)
			return
		}

		c.Next()
	}
}

// CurrentUser returns the logged in user, or nil for visitors.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(response.CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*entity.User)
	return user
}
