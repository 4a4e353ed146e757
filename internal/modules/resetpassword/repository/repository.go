package repository

import (
	"context"
	"time"

	"anoa.com/communityforum/internal/entity"
	"gorm.io/gorm"
)

type ResetPasswordRequestRepository interface {
	Create(ctx context.Context, req *entity.ResetPasswordRequest) error
	FindBySelector(ctx context.Context, selector string) (*entity.ResetPasswordRequest, error)
	// FindMostRecentNonExpired returns nil, nil when the user has no live request.
	FindMostRecentNonExpired(ctx context.Context, userID uint, now time.Time) (*entity.ResetPasswordRequest, error)
	Delete(ctx context.Context, id uint) error
	DeleteByUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetPasswordRequestRepository struct {
	db *gorm.DB
}

func NewResetPasswordRequestRepository(db *gorm.DB) ResetPasswordRequestRepository {
	return &resetPasswordRequestRepository{db: db}
}

func (r *resetPasswordRequestRepository) Create(ctx context.Context, req *entity.ResetPasswordRequest) error {
	return r.db.WithContext(ctx).Omit("User").Create(req).Error
}

func (r *resetPasswordRequestRepository) FindBySelector(ctx context.Context, selector string) (*entity.ResetPasswordRequest, error) {
	var req entity.ResetPasswordRequest
	if err := r.db.WithContext(ctx).Preload("User").Where("selector = ?", selector).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *resetPasswordRequestRepository) FindMostRecentNonExpired(ctx context.Context, userID uint, now time.Time) (*entity.ResetPasswordRequest, error) {
	var reqs []entity.ResetPasswordRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("requested_at DESC").
		Limit(1).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func (r *resetPasswordRequestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.ResetPasswordRequest{}, id).Error
}

func (r *resetPasswordRequestRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.ResetPasswordRequest{}).Error
}

func (r *resetPasswordRequestRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&entity.ResetPasswordRequest{})
	return result.RowsAffected, result.Error
}
