package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/communityforum/internal/middleware"
	adminDto "anoa.com/communityforum/internal/modules/admin/dto"
	category "anoa.com/communityforum/internal/modules/category/service"
	commentDto "anoa.com/communityforum/internal/modules/comment/dto"
	commentService "anoa.com/communityforum/internal/modules/comment/service"
	"anoa.com/communityforum/internal/modules/sujet/dto"
	sujetService "anoa.com/communityforum/internal/modules/sujet/service"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/csrf"
	"anoa.com/communityforum/pkg/ratelimiter"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

const deleteScope = "delete_sujet"

type SujetHandler struct {
	sujetService    sujetService.SujetService
	categoryService category.CategoryService
	commentService  commentService.CommentService
	csrf            *csrf.Guard
}

func NewSujetHandler(
	sujetService sujetService.SujetService,
	categoryService category.CategoryService,
	commentService commentService.CommentService,
	guard *csrf.Guard,
) *SujetHandler {
	return &SujetHandler{
		sujetService:    sujetService,
		categoryService: categoryService,
		commentService:  commentService,
		csrf:            guard,
	}
}

// Index lists categories and subjects and handles the inline new-subject form.
func (h *SujetHandler) Index(c *gin.Context) {
	var filter dto.ListFilter
	_ = c.ShouldBindQuery(&filter)

	var req dto.CreateSujetRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBind(&req); err != nil {
			h.renderIndex(c, filter, req, validator.FieldErrors(err))
			return
		}

		if _, err := h.sujetService.CreateSujet(c.Request.Context(), req.Name, req.Category); err != nil {
			if errs, ok := validator.BusinessErrors(err); ok {
				h.renderIndex(c, filter, req, errs)
				return
			}
			response.Error(c, err)
			return
		}

		response.Flash(c, response.FlashSuccess, "Sujet créé avec succès !")
		response.Redirect(c, "/forum")
		return
	}

	h.renderIndex(c, filter, req, nil)
}

func (h *SujetHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	_ = c.ShouldBindQuery(&query)

	sujets, err := h.sujetService.Search(c.Request.Context(), query.Q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "forum_search", gin.H{
		"query":  query.Q,
		"sujets": sujets,
	})
}

// Show displays a subject with its comments and takes new comments.
func (h *SujetHandler) Show(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sujet, err := h.sujetService.GetSujet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		var req commentDto.PostCommentRequest
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, fmt.Errorf("bind comment: %w", apperror.ErrInvalidInput))
			return
		}
		_, err := h.commentService.PostComment(c.Request.Context(), sujet.ID, req.Text, middleware.CurrentUser(c), c.ClientIP())
		var rl *ratelimiter.RateLimitError
		switch {
		case err == nil:
			response.Flash(c, response.FlashSuccess, "Commentaire ajouté avec succès.")
			response.Redirect(c, "/forum/subject/"+strconv.FormatUint(uint64(sujet.ID), 10))
			return
		case errors.Is(err, commentService.ErrEmptyComment):
			response.Flash(c, response.FlashError, "Le champ texte est obligatoire.")
		case errors.As(err, &rl):
			response.Flash(c, response.FlashError, rl.Message)
			status = http.StatusTooManyRequests
		default:
			response.Error(c, err)
			return
		}
	}

	comments, err := h.commentService.ListForSujet(c.Request.Context(), sujet.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	identifier := ""
	if user := middleware.CurrentUser(c); user != nil {
		identifier = user.Identifier()
	}
	response.HTML(c, status, "sujet_detail", gin.H{
		"subject":    sujet,
		"comments":   comments,
		"identifier": identifier,
	})
}

func (h *SujetHandler) AdminList(c *gin.Context) {
	sujets, err := h.sujetService.ListSujetsNewestFirst(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]uint, len(sujets))
	for i, s := range sujets {
		ids[i] = s.ID
	}
	response.HTML(c, http.StatusOK, "admin_sujets", gin.H{
		"sujets": sujets,
		"tokens": h.csrf.Tokens(c, deleteScope, ids...),
	})
}

func (h *SujetHandler) AdminNew(c *gin.Context) {
	var req adminDto.SujetRequest
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Nouveau sujet", req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Nouveau sujet", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.sujetService.CreateSujet(c.Request.Context(), req.Name, req.Category); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Nouveau sujet", req, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Sujet créé.")
	response.Redirect(c, "/admin/sujets")
}

func (h *SujetHandler) AdminEdit(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sujet, err := h.sujetService.GetSujet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	req := adminDto.SujetRequest{Name: sujet.Name, Category: sujet.CategoryID}
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Modifier le sujet", req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Modifier le sujet", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.sujetService.UpdateSujet(c.Request.Context(), id, req.Name, req.Category); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Modifier le sujet", req, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Sujet modifié.")
	response.Redirect(c, "/admin/sujets")
}

func (h *SujetHandler) AdminDelete(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.sujetService.GetSujet(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	if !h.csrf.Valid(c, deleteScope, id) {
		response.Flash(c, response.FlashError, "Token CSRF invalide.")
		response.Redirect(c, "/admin/sujets")
		return
	}

	if err := h.sujetService.DeleteSujet(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Sujet supprimé.")
	response.Redirect(c, "/admin/sujets")
}

func (h *SujetHandler) renderIndex(c *gin.Context, filter dto.ListFilter, req dto.CreateSujetRequest, errs map[string]string) {
	ctx := c.Request.Context()

	categories, err := h.categoryService.GetAllCategories(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	var selected *uint
	if id, err := strconv.ParseUint(filter.CategoryFilter, 10, 64); err == nil && id > 0 {
		v := uint(id)
		selected = &v
	}
	sujets, err := h.sujetService.ListSujets(ctx, selected)
	if err != nil {
		response.Error(c, err)
		return
	}

	var selectedID uint
	if selected != nil {
		selectedID = *selected
	}
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "forum_index", gin.H{
		"categories":         categories,
		"sujets":             sujets,
		"selectedCategoryId": selectedID,
		"form":               req,
		"errors":             errs,
	})
}

func (h *SujetHandler) renderForm(c *gin.Context, title string, req adminDto.SujetRequest, errs map[string]string) {
	categories, err := h.categoryService.GetAllCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "admin_sujet_form", gin.H{
		"title":      title,
		"categories": categories,
		"form":       req,
		"errors":     errs,
	})
}
