package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/user/dto"
	"anoa.com/communityforum/internal/modules/user/repository"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")
)

type ConfirmationSender interface {
	SendEmailConfirmation(ctx context.Context, user *entity.User)
}

// MemberCounter drops a cached member count once the number of accounts
// changed.
type MemberCounter interface {
	InvalidateTotalUsers(ctx context.Context)
}

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*entity.User, error)
	VerifyEmail(ctx context.Context, token string) (*entity.User, error)
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	UpdateProfile(ctx context.Context, user *entity.User, req dto.UpdateProfileRequest) error
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*entity.User, error)
}

type userService struct {
	repo     repository.UserRepository
	verifier ConfirmationSender
	members  MemberCounter
	log      zerolog.Logger
}

// NewUserService wires the account rules. verifier and members may be nil
// when the caller never registers or does not cache the member count.
func NewUserService(repo repository.UserRepository, verifier ConfirmationSender, members MemberCounter, log zerolog.Logger) UserService {
	return &userService{
		repo:     repo,
		verifier: verifier,
		members:  members,
		log:      log,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*entity.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if err := EnsureUnique(ctx, s.repo, 0, username, email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.PlainPassword)
	if err != nil {
		return nil, err
	}

	user := entity.NewUser(username, email)
	user.PasswordHash = hash
	user.SetRoles(entity.RoleUser)
	token := uuid.NewString()
	user.EmailVerificationToken = &token

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.memberAdded(ctx)
	s.log.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	s.verifier.SendEmailConfirmation(ctx, user)

	return user, nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, fmt.Errorf("verification token missing: %w", apperror.ErrNotFound)
	}

	user, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no user for verification token: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !user.IsVerified {
		user.MarkVerified()
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("verify user: %w", err)
		}
		s.log.Info().Uint("user_id", user.ID).Msg("email verified")
	}

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *entity.User, req dto.UpdateProfileRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if err := EnsureUnique(ctx, s.repo, user.ID, username, email); err != nil {
		return err
	}

	user.Username = username
	user.Email = email
	return s.repo.Update(ctx, user)
}

func (s *userService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperror.ErrInvalidInput)
	}

	if err := EnsureUnique(ctx, s.repo, 0, username, email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := entity.NewUser(username, email)
	user.PasswordHash = hash
	user.IsActive = true
	user.IsVerified = true
	if input.Admin {
		user.SetRoles(entity.RoleAdmin)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.memberAdded(ctx)
	return user, nil
}

func (s *userService) memberAdded(ctx context.Context) {
	if s.members != nil {
		s.members.InvalidateTotalUsers(ctx)
	}
}

// EnsureUnique rejects a username or email held by a user other than selfID.
func EnsureUnique(ctx context.Context, repo repository.UserRepository, selfID uint, username, email string) error {
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewFieldError("email", "Un compte existe déjà avec cette adresse email.", apperror.ErrConflict)
	}

	existing, err = repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewFieldError("username", "Ce pseudo est déjà utilisé.", apperror.ErrConflict)
	}
	return nil
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
