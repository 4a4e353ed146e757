package middleware

import (
	"errors"

	"anoa.com/communityforum/internal/entity"
	userDto "anoa.com/communityforum/internal/modules/user/dto"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	LastUsernameKey = "_security.last_username"
	LastErrorKey    = "_security.last_error"
)

// Authenticator owns the login form submission and logout.
type Authenticator struct {
	users userService.UserService
}

func NewAuthenticator(users userService.UserService) *Authenticator {
	return &Authenticator{users: users}
}

// LoginCheck handles POST /login.
func (a *Authenticator) LoginCheck(c *gin.Context) {
	var input userDto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		a.fail(c, input.Email, "Veuillez saisir votre email et votre mot de passe.")
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	switch {
	case errors.Is(err, userService.ErrInvalidCredentials):
		a.fail(c, input.Email, "Identifiants invalides.")
		return
	case errors.Is(err, userService.ErrAccountInactive):
		a.fail(c, input.Email, "Votre compte n'est pas encore activé, vérifiez vos emails.")
		return
	case err != nil:
		response.Error(c, err)
		return
	}

	if err := a.LoginUser(c, user); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/")
}

// Logout handles GET /logout.
func (a *Authenticator) Logout(c *gin.Context) {
	session.Get(c).Clear()
	response.Redirect(c, "/")
}

// LoginUser opens an authenticated session for user under a fresh session id.
func (a *Authenticator) LoginUser(c *gin.Context, user *entity.User) error {
	sess := session.Get(c)
	sess.Regenerate()
	sess.SetUserID(user.ID)
	sess.Delete(LastUsernameKey)
	sess.Delete(LastErrorKey)
	if err := sess.Save(c); err != nil {
		return err
	}

	c.Set(response.CurrentUserKey, user)
	zerolog.Ctx(c.Request.Context()).Info().Uint("user_id", user.ID).Msg("user logged in")
	return nil
}

func (a *Authenticator) fail(c *gin.Context, email, message string) {
	sess := session.Get(c)
	sess.Set(LastUsernameKey, email)
	sess.Set(LastErrorKey, message)
	response.Redirect(c, "/login")
}
