package handler

import (
	"net/http"

	"anoa.com/communityforum/internal/middleware"
	"anoa.com/communityforum/internal/modules/user/dto"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/session"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   userService.UserService
	authenticator *middleware.Authenticator
}

func NewUserHandler(userService userService.UserService, authenticator *middleware.Authenticator) *UserHandler {
	return &UserHandler{
		userService:   userService,
		authenticator: authenticator,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if c.Request.Method == http.MethodGet {
		h.renderRegister(c, req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderRegister(c, req, validator.FieldErrors(err))
		return
	}

	if _, err := h.userService.Register(c.Request.Context(), req); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderRegister(c, req, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Un email de confirmation a été envoyé. Veuillez vérifier votre boîte de réception.")
	response.Redirect(c, "/register/confirmation")
}

func (h *UserHandler) RegisterConfirmation(c *gin.Context) {
	response.HTML(c, http.StatusOK, "register_confirmation", nil)
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	user, err := h.userService.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.authenticator.LoginUser(c, user); err != nil {
		response.Flash(c, response.FlashError, "Une erreur est survenue lors de l'authentification automatique.")
		response.Redirect(c, "/login")
		return
	}

	response.Flash(c, response.FlashSuccess, "Votre email a été confirmé avec succès et vous êtes maintenant connecté.")
	response.Redirect(c, "/")
}

func (h *UserHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		response.Redirect(c, "/")
		return
	}

	sess := session.Get(c)
	response.HTML(c, http.StatusOK, "login", gin.H{
		"lastUsername": sess.Get(middleware.LastUsernameKey),
		"error":        sess.Pop(middleware.LastErrorKey),
	})
}

func (h *UserHandler) renderRegister(c *gin.Context, req dto.RegisterRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "register", gin.H{
		"form":   req,
		"errors": errs,
	})
}
