package repository

import (
	"context"
	"strings"

	"anoa.com/communityforum/internal/entity"
	"gorm.io/gorm"
)

// ListOptions filters and orders FindAll. A zero value lists every subject
// oldest first.
type ListOptions struct {
	CategoryID  *uint
	NewestFirst bool
	Limit       int
}

// TopDiscussed is a subject with the number of comments posted on it.
type TopDiscussed struct {
	Sujet      *entity.Sujet
	NbComments int64
}

type SujetRepository interface {
	Create(ctx context.Context, sujet *entity.Sujet) error
	Update(ctx context.Context, sujet *entity.Sujet) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Sujet, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*entity.Sujet, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*entity.Sujet, error)
	FindLatest(ctx context.Context, limit int) ([]*entity.Sujet, error)
	FindTopDiscussed(ctx context.Context, limit int) ([]TopDiscussed, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Sujet, error)
	Count(ctx context.Context) (int64, error)
}

type sujetRepository struct {
	db *gorm.DB
}

func NewSujetRepository(db *gorm.DB) SujetRepository {
	return &sujetRepository{db: db}
}

func (r *sujetRepository) Create(ctx context.Context, sujet *entity.Sujet) error {
	return r.db.WithContext(ctx).Omit("Category").Create(sujet).Error
}

func (r *sujetRepository) Update(ctx context.Context, sujet *entity.Sujet) error {
	return r.db.WithContext(ctx).Omit("Category").Save(sujet).Error
}

// Delete removes the subject and, through the foreign key, its comments.
func (r *sujetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Sujet{}, id).Error
}

func (r *sujetRepository) FindByID(ctx context.Context, id uint) (*entity.Sujet, error) {
	var sujet entity.Sujet
	if err := r.db.WithContext(ctx).Preload("Category").First(&sujet, id).Error; err != nil {
		return nil, err
	}
	return &sujet, nil
}

// FindByIDs keeps the order of ids and skips the ones that no longer exist.
func (r *sujetRepository) FindByIDs(ctx context.Context, ids []uint) ([]*entity.Sujet, error) {
	if len(ids) == 0 {
		return []*entity.Sujet{}, nil
	}

	var sujets []*entity.Sujet
	if err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&sujets).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.Sujet, len(sujets))
	for _, s := range sujets {
		byID[s.ID] = s
	}
	ordered := make([]*entity.Sujet, 0, len(sujets))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *sujetRepository) FindAll(ctx context.Context, opts ListOptions) ([]*entity.Sujet, error) {
	var sujets []*entity.Sujet
	query := r.db.WithContext(ctx).Preload("Category")

	if opts.CategoryID != nil {
		query = query.Where("category_id = ?", *opts.CategoryID)
	}
	if opts.NewestFirst {
		query = query.Order("id DESC")
	} else {
		query = query.Order("id ASC")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&sujets).Error; err != nil {
		return nil, err
	}
	return sujets, nil
}

func (r *sujetRepository) FindLatest(ctx context.Context, limit int) ([]*entity.Sujet, error) {
	var sujets []*entity.Sujet
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&sujets).Error
	if err != nil {
		return nil, err
	}
	return sujets, nil
}

// FindTopDiscussed ranks subjects by comment count, subjects without comments
// included.
func (r *sujetRepository) FindTopDiscussed(ctx context.Context, limit int) ([]TopDiscussed, error) {
	var rows []struct {
		ID         uint
		NbComments int64
	}

	query := `
		SELECT s.id, COUNT(c.id) AS nb_comments
		FROM sujets s
		LEFT JOIN comments c ON c.subject_id = s.id
		GROUP BY s.id
		ORDER BY nb_comments DESC, s.id ASC
		LIMIT ?
	`
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	sujets, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.Sujet, len(sujets))
	for _, s := range sujets {
		byID[s.ID] = s
	}
	result := make([]TopDiscussed, 0, len(rows))
	for _, row := range rows {
		if s, ok := byID[row.ID]; ok {
			result = append(result, TopDiscussed{Sujet: s, NbComments: row.NbComments})
		}
	}
	return result, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *sujetRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Sujet, error) {
	var sujets []*entity.Sujet
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where(`name ILIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(query)+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&sujets).Error
	if err != nil {
		return nil, err
	}
	return sujets, nil
}

func (r *sujetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Sujet{}).Count(&count).Error
	return count, err
}
