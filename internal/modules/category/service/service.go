package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/category/repository"
	"anoa.com/communityforum/pkg/apperror"
	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, name string) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id uint, name string) (*entity.Category, error)
	GetCategory(ctx context.Context, id uint) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]*entity.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	CountCategories(ctx context.Context) (int64, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	category := &entity.Category{Name: strings.TrimSpace(name)}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, name string) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(name)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]*entity.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *categoryService) CountCategories(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
