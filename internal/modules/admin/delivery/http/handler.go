package handler

import (
	"net/http"

	"anoa.com/communityforum/internal/middleware"
	"anoa.com/communityforum/internal/modules/admin/dto"
	adminService "anoa.com/communityforum/internal/modules/admin/service"
	"anoa.com/communityforum/pkg/csrf"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

const deleteScope = "delete_user"

type AdminHandler struct {
	adminService adminService.AdminService
	csrf         *csrf.Guard
}

func NewAdminHandler(adminService adminService.AdminService, guard *csrf.Guard) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		csrf:         guard,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "admin_dashboard", gin.H{"stats": stats})
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	members, err := h.adminService.ListMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	response.HTML(c, http.StatusOK, "admin_members", gin.H{
		"members": members,
		"tokens":  h.csrf.Tokens(c, deleteScope, ids...),
	})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.MemberRequest
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Nouveau membre", input, nil)
		return
	}

	if err := c.ShouldBind(&input); err != nil {
		h.renderForm(c, "Nouveau membre", input, validator.FieldErrors(err))
		return
	}

	if _, err := h.adminService.CreateMember(c.Request.Context(), input); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Nouveau membre", input, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Membre créé.")
	response.Redirect(c, "/admin/members")
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.adminService.GetMember(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := dto.MemberRequest{Username: member.Username, Email: member.Email, Admin: member.IsAdmin()}
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Modifier le membre", input, nil)
		return
	}

	input.Admin = false
	if err := c.ShouldBind(&input); err != nil {
		h.renderForm(c, "Modifier le membre", input, validator.FieldErrors(err))
		return
	}

	if _, err := h.adminService.UpdateMember(c.Request.Context(), id, input); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Modifier le membre", input, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Membre modifié.")
	response.Redirect(c, "/admin/members")
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.adminService.GetMember(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	if !h.csrf.Valid(c, deleteScope, id) {
		response.Flash(c, response.FlashError, "Token CSRF invalide.")
		response.Redirect(c, "/admin/members")
		return
	}

	if current := middleware.CurrentUser(c); current != nil && current.ID == id {
		response.Flash(c, response.FlashError, "Vous ne pouvez pas supprimer votre propre compte.")
		response.Redirect(c, "/admin/members")
		return
	}

	if err := h.adminService.DeleteMember(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Membre supprimé.")
	response.Redirect(c, "/admin/members")
}

func (h *AdminHandler) renderForm(c *gin.Context, title string, input dto.MemberRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	input.Password = ""
	response.HTML(c, http.StatusOK, "admin_member_form", gin.H{
		"title":  title,
		"form":   input,
		"errors": errs,
	})
}
