package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/admin/dto"
	categoryRepo "anoa.com/communityforum/internal/modules/category/repository"
	commentRepo "anoa.com/communityforum/internal/modules/comment/repository"
	statService "anoa.com/communityforum/internal/modules/stat/service"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	userDto "anoa.com/communityforum/internal/modules/user/dto"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	ListMembers(ctx context.Context) ([]*entity.User, error)
	GetMember(ctx context.Context, id uint) (*entity.User, error)
	CreateMember(ctx context.Context, input dto.MemberRequest) (*entity.User, error)
	UpdateMember(ctx context.Context, id uint, input dto.MemberRequest) (*entity.User, error)
	DeleteMember(ctx context.Context, id uint) error
}

type adminService struct {
	userRepo     userRepo.UserRepository
	categoryRepo categoryRepo.CategoryRepository
	sujetRepo    sujetRepo.SujetRepository
	commentRepo  commentRepo.CommentRepository
	users        userService.UserService
	stats        statService.StatService
	log          zerolog.Logger
}

func NewAdminService(
	userRepo userRepo.UserRepository,
	categoryRepo categoryRepo.CategoryRepository,
	sujetRepo sujetRepo.SujetRepository,
	commentRepo commentRepo.CommentRepository,
	users userService.UserService,
	stats statService.StatService,
	log zerolog.Logger,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		sujetRepo:    sujetRepo,
		commentRepo:  commentRepo,
		users:        users,
		stats:        stats,
		log:          log,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	var stats dto.DashboardStats
	var err error

	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.Categories, err = s.categoryRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if stats.Sujets, err = s.sujetRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count sujets: %w", err)
	}
	if stats.Comments, err = s.commentRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	return &stats, nil
}

func (s *adminService) ListMembers(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *adminService) GetMember(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *adminService) CreateMember(ctx context.Context, input dto.MemberRequest) (*entity.User, error) {
	if input.Password == "" {
		return nil, apperror.NewFieldError("password", "Le mot de passe est requis.", apperror.ErrInvalidInput)
	}

	user, err := s.users.CreateUser(ctx, userDto.CreateUserInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Admin:    input.Admin,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info().Uint("user_id", user.ID).Bool("admin", user.IsAdmin()).Msg("member created from back-office")
	return user, nil
}

func (s *adminService) UpdateMember(ctx context.Context, id uint, input dto.MemberRequest) (*entity.User, error) {
	user, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if err := userService.EnsureUnique(ctx, s.userRepo, user.ID, username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if input.Password != "" {
		hash, err := userService.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Admin {
		user.Roles.Add(entity.RoleAdmin)
	} else {
		user.Roles.Remove(entity.RoleAdmin)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return user, nil
}

func (s *adminService) DeleteMember(ctx context.Context, id uint) error {
	if _, err := s.GetMember(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Uint("user_id", id).Msg("member deleted")
	return nil
}

func (s *adminService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateTotalUsers(ctx)
	}
}
