package handler

import (
	"net/http"
	"strconv"
	"time"

	"anoa.com/communityforum/internal/middleware"
	adminDto "anoa.com/communityforum/internal/modules/admin/dto"
	admin "anoa.com/communityforum/internal/modules/admin/service"
	"anoa.com/communityforum/internal/modules/comment/dto"
	commentService "anoa.com/communityforum/internal/modules/comment/service"
	sujetService "anoa.com/communityforum/internal/modules/sujet/service"
	"anoa.com/communityforum/pkg/csrf"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	deleteScope = "delete_comment"
	dateLayout  = "2006-01-02T15:04"
)

type CommentHandler struct {
	commentService commentService.CommentService
	sujetService   sujetService.SujetService
	adminService   admin.AdminService
	csrf           *csrf.Guard
}

func NewCommentHandler(
	commentService commentService.CommentService,
	sujetService sujetService.SujetService,
	adminService admin.AdminService,
	guard *csrf.Guard,
) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		sujetService:   sujetService,
		adminService:   adminService,
		csrf:           guard,
	}
}

// Edit lets a member rewrite one of their own comments.
func (h *CommentHandler) Edit(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	comment, err := h.commentService.GetOwnComment(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	req := dto.EditCommentRequest{Text: comment.Text}
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBind(&req); err != nil {
			h.renderEdit(c, comment.SubjectID, req, validator.FieldErrors(err))
			return
		}
		if _, err := h.commentService.EditOwnComment(c.Request.Context(), user, id, req.Text); err != nil {
			if errs, ok := validator.BusinessErrors(err); ok {
				h.renderEdit(c, comment.SubjectID, req, errs)
				return
			}
			response.Error(c, err)
			return
		}

		response.Flash(c, response.FlashSuccess, "Commentaire modifié.")
		response.Redirect(c, "/forum/subject/"+strconv.FormatUint(uint64(comment.SubjectID), 10))
		return
	}

	h.renderEdit(c, comment.SubjectID, req, nil)
}

func (h *CommentHandler) AdminList(c *gin.Context) {
	comments, err := h.commentService.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	response.HTML(c, http.StatusOK, "admin_comments", gin.H{
		"comments": comments,
		"tokens":   h.csrf.Tokens(c, deleteScope, ids...),
	})
}

func (h *CommentHandler) AdminNew(c *gin.Context) {
	req := adminDto.CommentRequest{Date: time.Now().Format(dateLayout)}
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Nouveau commentaire", req, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Nouveau commentaire", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.commentService.CreateComment(c.Request.Context(), toInput(req)); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Nouveau commentaire", req, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Commentaire créé.")
	response.Redirect(c, "/admin/comments")
}

func (h *CommentHandler) AdminEdit(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	comment, err := h.commentService.GetComment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	req := adminDto.CommentRequest{
		Text:    comment.Text,
		Subject: comment.SubjectID,
		Date:    comment.Date.Format(dateLayout),
	}
	if comment.UserID != nil {
		req.AuthorUser = *comment.UserID
	}
	if c.Request.Method == http.MethodGet {
		h.renderForm(c, "Modifier le commentaire", req, nil)
		return
	}

	req.AuthorUser = 0
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, "Modifier le commentaire", req, validator.FieldErrors(err))
		return
	}
	if _, err := h.commentService.UpdateComment(c.Request.Context(), id, toInput(req)); err != nil {
		if errs, ok := validator.BusinessErrors(err); ok {
			h.renderForm(c, "Modifier le commentaire", req, errs)
			return
		}
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Commentaire modifié.")
	response.Redirect(c, "/admin/comments")
}

func (h *CommentHandler) AdminDelete(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.commentService.GetComment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	if !h.csrf.Valid(c, deleteScope, id) {
		response.Flash(c, response.FlashError, "Token CSRF invalide.")
		response.Redirect(c, "/admin/comments")
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Flash(c, response.FlashSuccess, "Commentaire supprimé.")
	response.Redirect(c, "/admin/comments")
}

func (h *CommentHandler) renderEdit(c *gin.Context, subjectID uint, req dto.EditCommentRequest, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "comment_edit", gin.H{
		"subjectId": subjectID,
		"form":      req,
		"errors":    errs,
	})
}

func (h *CommentHandler) renderForm(c *gin.Context, title string, req adminDto.CommentRequest, errs map[string]string) {
	ctx := c.Request.Context()
	sujets, err := h.sujetService.ListSujets(ctx, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	members, err := h.adminService.ListMembers(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}
	response.HTML(c, http.StatusOK, "admin_comment_form", gin.H{
		"title":   title,
		"sujets":  sujets,
		"members": members,
		"form":    req,
		"errors":  errs,
	})
}

// toInput converts a validated form, so the date is known to parse.
func toInput(req adminDto.CommentRequest) commentService.CommentInput {
	date, _ := time.ParseInLocation(dateLayout, req.Date, time.Local)
	input := commentService.CommentInput{
		Text:      req.Text,
		SubjectID: req.Subject,
		Date:      date,
	}
	if req.AuthorUser != 0 {
		author := req.AuthorUser
		input.AuthorUserID = &author
	}
	return input
}
