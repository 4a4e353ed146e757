package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/comment/repository"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/ratelimiter"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrEmptyComment = errors.New("comment text is empty")

const postAction = "post_comment"

// CommentInput is what the back-office sets on a comment.
type CommentInput struct {
	Text      string
	SubjectID uint
	// AuthorUserID is optional, nil keeps the stored author name.
	AuthorUserID *uint
	Date         time.Time
}

type CommentService interface {
	// PostComment adds a comment to a subject. A nil author posts anonymously.
	PostComment(ctx context.Context, sujetID uint, text string, author *entity.User, clientKey string) (*entity.Comment, error)
	ListForSujet(ctx context.Context, sujetID uint) ([]*entity.Comment, error)
	ListForUser(ctx context.Context, userID uint) ([]*entity.Comment, error)
	ListAll(ctx context.Context) ([]*entity.Comment, error)
	GetComment(ctx context.Context, id uint) (*entity.Comment, error)
	// GetOwnComment returns the comment only if actor wrote it.
	GetOwnComment(ctx context.Context, actor *entity.User, id uint) (*entity.Comment, error)
	EditOwnComment(ctx context.Context, actor *entity.User, id uint, text string) (*entity.Comment, error)
	CreateComment(ctx context.Context, input CommentInput) (*entity.Comment, error)
	UpdateComment(ctx context.Context, id uint, input CommentInput) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	CountComments(ctx context.Context) (int64, error)
}

type commentService struct {
	repo      repository.CommentRepository
	sujetRepo sujetRepo.SujetRepository
	userRepo  userRepo.UserRepository
	limiter   *ratelimiter.Limiter
	window    time.Duration
	log       zerolog.Logger
}

func NewCommentService(
	repo repository.CommentRepository,
	sujetRepo sujetRepo.SujetRepository,
	userRepo userRepo.UserRepository,
	limiter *ratelimiter.Limiter,
	window time.Duration,
	log zerolog.Logger,
) CommentService {
	return &commentService{
		repo:      repo,
		sujetRepo: sujetRepo,
		userRepo:  userRepo,
		limiter:   limiter,
		window:    window,
		log:       log,
	}
}

func (s *commentService) PostComment(ctx context.Context, sujetID uint, text string, author *entity.User, clientKey string) (*entity.Comment, error) {
	if isBlank(text) {
		return nil, ErrEmptyComment
	}

	sujet, err := s.findSujet(ctx, sujetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sujet %d: %w", sujetID, apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.limiter.Check(ctx, clientKey, postAction, s.window); err != nil {
		var rl *ratelimiter.RateLimitError
		if errors.As(err, &rl) {
			return nil, err
		}
		// fail open
		s.log.Warn().Err(err).Str("client", clientKey).Msg("rate limiter unavailable")
	}

	comment := entity.NewComment(text, author)
	comment.AttachTo(sujet)
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.log.Info().Uint("comment_id", comment.ID).Uint("sujet_id", sujet.ID).Str("author", comment.Author).Msg("comment posted")
	return comment, nil
}

func (s *commentService) ListForSujet(ctx context.Context, sujetID uint) ([]*entity.Comment, error) {
	return s.repo.FindBySujet(ctx, sujetID)
}

func (s *commentService) ListForUser(ctx context.Context, userID uint) ([]*entity.Comment, error) {
	return s.repo.FindByUser(ctx, userID)
}

func (s *commentService) ListAll(ctx context.Context) ([]*entity.Comment, error) {
	return s.repo.FindAll(ctx)
}

func (s *commentService) GetComment(ctx context.Context, id uint) (*entity.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) GetOwnComment(ctx context.Context, actor *entity.User, id uint) (*entity.Comment, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsOwnedBy(actor.Identifier()) {
		return nil, apperror.New(http.StatusForbidden, "Vous ne pouvez modifier que vos propres commentaires.", apperror.ErrForbidden)
	}
	return comment, nil
}

func (s *commentService) EditOwnComment(ctx context.Context, actor *entity.User, id uint, text string) (*entity.Comment, error) {
	comment, err := s.GetOwnComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if isBlank(text) {
		return nil, apperror.NewFieldError("text", "Le commentaire ne peut pas être vide.", ErrEmptyComment)
	}
	comment.Text = text
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) CreateComment(ctx context.Context, input CommentInput) (*entity.Comment, error) {
	comment := &entity.Comment{}
	if err := s.apply(ctx, comment, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, id uint, input CommentInput) (*entity.Comment, error) {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, comment, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id uint) error {
	if _, err := s.GetComment(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *commentService) CountComments(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *commentService) apply(ctx context.Context, comment *entity.Comment, input CommentInput) error {
	if isBlank(input.Text) {
		return apperror.NewFieldError("text", "Le commentaire ne peut pas être vide.", ErrEmptyComment)
	}

	sujet, err := s.findSujet(ctx, input.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewFieldError("subject", "Veuillez choisir un sujet valide.", apperror.ErrInvalidInput)
		}
		return err
	}

	var author *entity.User
	if input.AuthorUserID != nil {
		author, err = s.userRepo.FindByID(ctx, *input.AuthorUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewFieldError("authorUser", "Veuillez choisir un membre valide.", apperror.ErrInvalidInput)
			}
			return err
		}
	}

	comment.Text = input.Text
	comment.Date = input.Date
	if comment.Date.IsZero() {
		comment.Date = time.Now()
	}
	comment.SetAuthorUser(author)
	comment.AttachTo(sujet)
	return nil
}

func (s *commentService) findSujet(ctx context.Context, id uint) (*entity.Sujet, error) {
	return s.sujetRepo.FindByID(ctx, id)
}

// isBlank reports text with nothing but whitespace. Text is otherwise stored
// as posted and escaped when rendered.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
