package handler

import (
	"net/http"

	adminDto "anoa.com/communityforum/internal/modules/admin/dto"
	category "anoa.com/communityforum/internal/modules/category/service"
	"anoa.com/communityforum/pkg/csrf"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

const deleteScope = "delete_category"

// CategoryHandler serves the back-office category pages.
type CategoryHandler struct {
	service category.CategoryService
	csrf    *csrf.Guard
}

func NewCategoryHandler(service category.CategoryService, guard *csrf.Guard) *CategoryHandler {
	return &CategoryHandler{service: service, csrf: guard}
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.service.GetAllCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]uint, len(categories))
	for i, cat := range categories {
		ids[i] = cat.ID
	}
	response.HTML(c, http.StatusOK, "admin_categories", gin.H{
		"categories": categories,
		"tokens":     h.csrf.Tokens(c, deleteScope, ids...),
	})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req adminDto.CategoryRequest
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Nouvelle catégorie", req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Nouvelle catégorie", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.service.CreateCategory(c.Request.Context(), req.Name); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Catégorie créée.")
	response.Redirect(c, "/admin/categories")
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	cat, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	req := adminDto.CategoryRequest{Name: cat.Name}
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Modifier la catégorie", req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Modifier la catégorie", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.service.UpdateCategory(c.Request.Context(), id, req.Name); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Catégorie modifiée.")
	response.Redirect(c, "/admin/categories")
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.GetCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	if !h.csrf.Valid(c, deleteScope, id) {
		response.Flash(c, response.FlashError, "Token CSRF invalide.")
		response.Redirect(c, "/admin/categories")
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Catégorie supprimée.")
	response.Redirect(c, "/admin/categories")
}

func (h *CategoryHandler) renderForm(c *gin.Context, title string, req adminDto.CategoryRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "admin_category_form", gin.H{
		"title":  title,
		"form":   req,
		"errors": errs,
	})
}
