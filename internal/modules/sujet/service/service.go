package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/communityforum/internal/entity"
	categoryRepo "anoa.com/communityforum/internal/modules/category/repository"
	search "anoa.com/communityforum/internal/modules/search/service"
	"anoa.com/communityforum/internal/modules/sujet/repository"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const searchLimit = 50

type SujetService interface {
	// ListSujets lists the forum subjects, optionally restricted to one category.
	ListSujets(ctx context.Context, categoryID *uint) ([]*entity.Sujet, error)
	ListSujetsNewestFirst(ctx context.Context) ([]*entity.Sujet, error)
	GetSujet(ctx context.Context, id uint) (*entity.Sujet, error)
	CreateSujet(ctx context.Context, name string, categoryID uint) (*entity.Sujet, error)
	UpdateSujet(ctx context.Context, id uint, name string, categoryID uint) (*entity.Sujet, error)
	DeleteSujet(ctx context.Context, id uint) error
	LatestSujets(ctx context.Context, limit int) ([]*entity.Sujet, error)
	TopDiscussed(ctx context.Context, limit int) ([]repository.TopDiscussed, error)
	Search(ctx context.Context, query string) ([]*entity.Sujet, error)
	CountSujets(ctx context.Context) (int64, error)
}

type sujetService struct {
	repo         repository.SujetRepository
	categoryRepo categoryRepo.CategoryRepository
	index        search.SujetIndex
	log          zerolog.Logger
}

// NewSujetService wires the subject rules. index may be nil, search then
// falls back to SQL.
func NewSujetService(repo repository.SujetRepository, categoryRepo categoryRepo.CategoryRepository, index search.SujetIndex, log zerolog.Logger) SujetService {
	return &sujetService{
		repo:         repo,
		categoryRepo: categoryRepo,
		index:        index,
		log:          log,
	}
}

func (s *sujetService) ListSujets(ctx context.Context, categoryID *uint) ([]*entity.Sujet, error) {
	return s.repo.FindAll(ctx, repository.ListOptions{CategoryID: categoryID})
}

func (s *sujetService) ListSujetsNewestFirst(ctx context.Context) ([]*entity.Sujet, error) {
	return s.repo.FindAll(ctx, repository.ListOptions{NewestFirst: true})
}

func (s *sujetService) GetSujet(ctx context.Context, id uint) (*entity.Sujet, error) {
	sujet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sujet %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return sujet, nil
}

func (s *sujetService) CreateSujet(ctx context.Context, name string, categoryID uint) (*entity.Sujet, error) {
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	sujet := entity.NewSujet(name)
	sujet.AttachTo(category)
	if err := s.repo.Create(ctx, sujet); err != nil {
		return nil, fmt.Errorf("create sujet: %w", err)
	}

	s.reindex(sujet)
	return sujet, nil
}

func (s *sujetService) UpdateSujet(ctx context.Context, id uint, name string, categoryID uint) (*entity.Sujet, error) {
	sujet, err := s.GetSujet(ctx, id)
	if err != nil {
		return nil, err
	}
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	sujet.Name = name
	sujet.AttachTo(category)
	if err := s.repo.Update(ctx, sujet); err != nil {
		return nil, fmt.Errorf("update sujet: %w", err)
	}

	s.reindex(sujet)
	return sujet, nil
}

func (s *sujetService) DeleteSujet(ctx context.Context, id uint) error {
	if _, err := s.GetSujet(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteSujet(id); err != nil {
			s.log.Warn().Err(err).Uint("sujet_id", id).Msg("failed to remove sujet from search index")
		}
	}
	return nil
}

func (s *sujetService) LatestSujets(ctx context.Context, limit int) ([]*entity.Sujet, error) {
	return s.repo.FindLatest(ctx, limit)
}

func (s *sujetService) TopDiscussed(ctx context.Context, limit int) ([]repository.TopDiscussed, error) {
	return s.repo.FindTopDiscussed(ctx, limit)
}

func (s *sujetService) Search(ctx context.Context, query string) ([]*entity.Sujet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entity.Sujet{}, nil
	}

	if s.index != nil {
		ids, err := s.index.SearchSujets(query, searchLimit)
		if err == nil {
			return s.repo.FindByIDs(ctx, ids)
		}
		s.log.Warn().Err(err).Str("query", query).Msg("search index unavailable, falling back to database")
	}
	return s.repo.Search(ctx, query, searchLimit)
}

func (s *sujetService) CountSujets(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *sujetService) findCategory(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewFieldError("category", "Veuillez choisir une catégorie valide.", apperror.ErrInvalidInput)
		}
		return nil, err
	}
	return category, nil
}

func (s *sujetService) reindex(sujet *entity.Sujet) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexSujet(sujet); err != nil {
		s.log.Warn().Err(err).Uint("sujet_id", sujet.ID).Msg("failed to index sujet")
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.NewFieldError("name", "Le nom du sujet ne peut pas être vide.", apperror.ErrInvalidInput)
	}
	return nil
}
