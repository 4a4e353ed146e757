package handler

import (
	"net/http"

	"anoa.com/communityforum/internal/middleware"
	profile "anoa.com/communityforum/internal/modules/profile/service"
	userDto "anoa.com/communityforum/internal/modules/user/dto"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Redirect(c, "/login")
		return
	}

	view, err := h.profileService.GetCurrentProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "profil", gin.H{
		"user":     view.User,
		"roles":    view.Roles,
		"comments": view.Comments,
	})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Redirect(c, "/login")
		return
	}

	input := userDto.UpdateProfileRequest{Username: user.Username, Email: user.Email}
	if c.Request.Method == http.MethodGet {
		h.renderEdit(c, input, nil)
		return
	}

	if err := c.ShouldBind(&input); err != nil {
		h.renderEdit(c, input, validator.FieldErrors(err))
		return
	}

	if err := h.profileService.UpdateProfile(c.Request.Context(), user, input); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderEdit(c, input, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Profil mis à jour.")
	response.Redirect(c, "/profil")
}

func (h *ProfileHandler) renderEdit(c *gin.Context, input userDto.UpdateProfileRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "profil_edit", gin.H{
		"form":   input,
		"errors": errs,
	})
}
