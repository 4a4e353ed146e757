package handler

import (
	"errors"
	"net/http"
	"time"

	"anoa.com/communityforum/internal/modules/resetpassword/dto"
	reset "anoa.com/communityforum/internal/modules/resetpassword/service"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/session"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	tokenKey    = "reset_password_token"
	lifetimeKey = "reset_password_lifetime"

	FlashResetError = "reset_password_error"
)

type ResetPasswordHandler struct {
	service reset.ResetPasswordService
}

func NewResetPasswordHandler(service reset.ResetPasswordService) *ResetPasswordHandler {
	return &ResetPasswordHandler{service: service}
}

func (h *ResetPasswordHandler) Request(c *gin.Context) {
	var req dto.ResetRequest
	if c.Request.Method == http.MethodGet {
		h.renderRequest(c, req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderRequest(c, req, validator.FieldErrors(err))
		return
	}

	token, err := h.service.RequestReset(c.Request.Context(), req.Email)
	switch {
	case err == nil && token != nil:
		session.Get(c).Set(lifetimeKey, token.Lifetime().String())
	case err == nil, errors.Is(err, reset.ErrTooManyRequests):
		// unknown email or throttled, answered like a success
	default:
		response.Error(c, err)
		return
	}

	response.Redirect(c, "/reset-password/check-email")
}

func (h *ResetPasswordHandler) CheckEmail(c *gin.Context) {
	lifetime, err := time.ParseDuration(session.Get(c).Get(lifetimeKey))
	if err != nil {
		lifetime = h.service.FakeToken().Lifetime()
	}

	response.HTML(c, http.StatusOK, "reset_check_email", gin.H{
		"lifetime": reset.FormatLifetime(lifetime),
	})
}

// StoreToken moves the token from the mailed link into the session so it
// does not linger in the address bar or referrers.
func (h *ResetPasswordHandler) StoreToken(c *gin.Context) {
	session.Get(c).Set(tokenKey, c.Param("token"))
	response.Redirect(c, "/reset-password/reset")
}

func (h *ResetPasswordHandler) Reset(c *gin.Context) {
	sess := session.Get(c)
	token := sess.Get(tokenKey)
	if token == "" {
		response.Error(c, apperror.New(http.StatusNotFound, "Aucun jeton de réinitialisation trouvé dans l'URL ni dans la session.", apperror.ErrNotFound))
		return
	}

	if _, err := h.service.ValidateTokenAndFetchUser(c.Request.Context(), token); err != nil {
		h.failValidation(c, err)
		return
	}

	var req dto.ChangePasswordRequest
	if c.Request.Method == http.MethodGet {
		h.renderReset(c, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderReset(c, validator.FieldErrors(err))
		return
	}

	if _, err := h.service.ResetPassword(c.Request.Context(), token, req.PlainPassword); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderReset(c, errs)
			return
		}
		h.failValidation(c, err)
		return
	}

	sess.Delete(tokenKey)
	sess.Delete(lifetimeKey)
	response.Flash(c, response.FlashSuccess, "Votre mot de passe a été réinitialisé.")
	response.Redirect(c, "/")
}

func (h *ResetPasswordHandler) failValidation(c *gin.Context, err error) {
	if !errors.Is(err, reset.ErrInvalidToken) && !errors.Is(err, reset.ErrExpiredToken) {
		response.Error(c, err)
		return
	}
	response.Flash(c, FlashResetError, "Un problème est survenu lors de la validation de votre demande de réinitialisation - "+reset.Reason(err))
	response.Redirect(c, "/reset-password/password")
}

func (h *ResetPasswordHandler) renderRequest(c *gin.Context, req dto.ResetRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "reset_request", gin.H{
		"form":   req,
		"errors": errs,
	})
}

func (h *ResetPasswordHandler) renderReset(c *gin.Context, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "reset_reset", gin.H{
		"errors": errs,
	})
}
