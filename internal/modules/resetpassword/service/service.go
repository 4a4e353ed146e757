package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"math/big"
	"strings"
	"time"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/internal/modules/resetpassword/repository"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/mailer"
	"anoa.com/communityforum/pkg/pwned"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	selectorLength = 20
	verifierLength = 20
	alphabet       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrInvalidToken      = errors.New("reset token is invalid")
	ErrExpiredToken      = errors.New("reset token has expired")
	ErrTooManyRequests   = errors.New("a reset request is already pending")
	ErrCompromisedSecret = errors.New("password appears in a data breach")
)

// Reason words a reset failure for the person holding the link.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "Le lien de réinitialisation a expiré."
	case errors.Is(err, ErrInvalidToken):
		return "Le lien de réinitialisation est invalide."
	case errors.Is(err, ErrTooManyRequests):
		return "Une demande de réinitialisation est déjà en cours."
	default:
		return "Un problème est survenu lors de la validation de votre demande."
	}
}

// Token is the public half of a reset request, as mailed to the user.
type Token struct {
	Value       string
	GeneratedAt time.Time
	ExpiresAt   time.Time
}

// Lifetime is how long the token stays usable from its creation.
func (t Token) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.GeneratedAt)
}

type Config struct {
	From       string
	BaseURL    string
	SigningKey string
	Lifetime   time.Duration
	Throttle   time.Duration
}

type ResetPasswordService interface {
	// RequestReset mails a reset link. Unknown emails yield a nil token and
	// no error so callers cannot tell them apart.
	RequestReset(ctx context.Context, email string) (*Token, error)
	ValidateTokenAndFetchUser(ctx context.Context, token string) (*entity.User, error)
	ResetPassword(ctx context.Context, token, plainPassword string) (*entity.User, error)
	FakeToken() Token
	PurgeExpired(ctx context.Context) (int64, error)
}

type resetPasswordService struct {
	repo     repository.ResetPasswordRequestRepository
	userRepo userRepo.UserRepository
	mailer   mailer.Mailer
	pwned    pwned.Checker
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewResetPasswordService(
	repo repository.ResetPasswordRequestRepository,
	userRepo userRepo.UserRepository,
	m mailer.Mailer,
	checker pwned.Checker,
	cfg Config,
	log zerolog.Logger,
) ResetPasswordService {
	if checker == nil {
		checker = pwned.Disabled{}
	}
	return &resetPasswordService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   m,
		pwned:    checker,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *resetPasswordService) RequestReset(ctx context.Context, email string) (*Token, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := s.now().Truncate(time.Second)
	if _, err := s.repo.DeleteExpired(ctx, now); err != nil {
		s.log.Warn().Err(err).Msg("failed to purge expired reset requests")
	}

	last, err := s.repo.FindMostRecentNonExpired(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if last != nil && last.RequestedAt.Add(s.cfg.Throttle).After(now) {
		return nil, ErrTooManyRequests
	}

	selector, err := randomString(selectorLength)
	if err != nil {
		return nil, err
	}
	verifier, err := randomString(verifierLength)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.cfg.Lifetime)
	req := entity.NewResetPasswordRequest(user, expiresAt, selector, s.hash(verifier, user.ID, expiresAt))
	req.RequestedAt = now
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create reset request: %w", err)
	}

	token := &Token{Value: selector + verifier, GeneratedAt: now, ExpiresAt: expiresAt}
	if err := s.sendResetEmail(ctx, user, token); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Msg("password reset requested")
	return token, nil
}

func (s *resetPasswordService) ValidateTokenAndFetchUser(ctx context.Context, token string) (*entity.User, error) {
	req, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return req.User, nil
}

func (s *resetPasswordService) ResetPassword(ctx context.Context, token, plainPassword string) (*entity.User, error) {
	req, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	compromised, err := s.pwned.IsCompromised(ctx, plainPassword)
	if err != nil {
		s.log.Warn().Err(err).Msg("password breach check failed, skipping")
	}
	if compromised {
		return nil, apperror.NewFieldError("plainPassword", "Ce mot de passe a été exposé dans une fuite de données, veuillez en choisir un autre.", ErrCompromisedSecret)
	}

	hash, err := userService.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteByUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("remove reset request: %w", err)
	}

	user := req.User
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("password reset")
	return user, nil
}

// FakeToken is shown on the check-email page when no real request was made.
func (s *resetPasswordService) FakeToken() Token {
	now := s.now()
	return Token{Value: "fake", GeneratedAt: now, ExpiresAt: now.Add(s.cfg.Lifetime)}
}

func (s *resetPasswordService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *resetPasswordService) lookup(ctx context.Context, token string) (*entity.ResetPasswordRequest, error) {
	if len(token) != selectorLength+verifierLength {
		return nil, ErrInvalidToken
	}
	selector, verifier := token[:selectorLength], token[selectorLength:]

	req, err := s.repo.FindBySelector(ctx, selector)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if req.IsExpired(s.now()) {
		return nil, ErrExpiredToken
	}

	expected := s.hash(verifier, req.UserID, req.ExpiresAt)
	if !hmac.Equal([]byte(expected), []byte(req.HashedToken)) || req.User == nil {
		return nil, ErrInvalidToken
	}
	return req, nil
}

func (s *resetPasswordService) hash(verifier string, userID uint, expiresAt time.Time) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SigningKey))
	fmt.Fprintf(mac, "%s|%d|%d", verifier, userID, expiresAt.Unix())
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *resetPasswordService) sendResetEmail(ctx context.Context, user *entity.User, token *Token) error {
	link := s.cfg.BaseURL + "/reset-password/reset/" + token.Value
	body := fmt.Sprintf(
		`<h1>Bonjour !</h1>`+
			`<p>Pour réinitialiser votre mot de passe, veuillez cliquer sur le lien suivant :</p>`+
			`<a href="%s">%s</a>`+
			`<p>Ce lien expirera dans %s.</p>`+
			`<p>Bonne journée !</p>`,
		html.EscapeString(link), html.EscapeString(link), FormatLifetime(token.Lifetime()),
	)

	err := s.mailer.Send(ctx, mailer.Message{
		From:    s.cfg.From,
		To:      user.Email,
		Subject: "Votre demande de réinitialisation de mot de passe",
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// FormatLifetime renders a duration the way the reset pages word it.
func FormatLifetime(d time.Duration) string {
	if d >= time.Minute {
		d = d.Round(time.Minute)
	}
	switch {
	case d >= time.Hour:
		h := int(d.Round(time.Hour) / time.Hour)
		if h == 1 {
			return "1 heure"
		}
		return fmt.Sprintf("%d heures", h)
	case d >= time.Minute:
		m := int(d.Round(time.Minute) / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return "quelques secondes"
	}
}

func randomString(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random token: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
