package profile

import (
	"context"

	"anoa.com/communityforum/internal/entity"
	commentRepo "anoa.com/communityforum/internal/modules/comment/repository"
	profileDto "anoa.com/communityforum/internal/modules/profile/dto"
	userDto "anoa.com/communityforum/internal/modules/user/dto"
	userService "anoa.com/communityforum/internal/modules/user/service"
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uint) (*profileDto.ProfileView, error)
	UpdateProfile(ctx context.Context, user *entity.User, input userDto.UpdateProfileRequest) error
}

type profileService struct {
	users       userService.UserService
	commentRepo commentRepo.CommentRepository
}

func NewProfileService(users userService.UserService, commentRepo commentRepo.CommentRepository) ProfileService {
	return &profileService{
		users:       users,
		commentRepo: commentRepo,
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uint) (*profileDto.ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.ProfileView{
		User:     user,
		Roles:    user.GetRoles(),
		Comments: comments,
	}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, user *entity.User, input userDto.UpdateProfileRequest) error {
	return s.users.UpdateProfile(ctx, user, input)
}
