package bootstrap

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"anoa.com/communityforum/internal/entity"
	categoryRepo "anoa.com/communityforum/internal/modules/category/repository"
	searchService "anoa.com/communityforum/internal/modules/search/service"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Categories []string       `yaml:"categories"`
	Sujets     []FixtureSujet `yaml:"sujets"`
	Users      []FixtureUser  `yaml:"users"`
}

type FixtureSujet struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type FixtureUser struct {
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

// ParseFixtures reads a fixtures document. Every subject must name one of the
// listed categories.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	known := make(map[string]bool, len(f.Categories))
	for _, name := range f.Categories {
		known[name] = true
	}
	for _, s := range f.Sujets {
		if !known[s.Category] {
			return nil, fmt.Errorf("sujet %q: unknown category %q", s.Name, s.Category)
		}
	}
	return &f, nil
}

// DefaultFixtures returns the demo data shipped with the binary.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

type Loader struct {
	Users      userRepo.UserRepository
	Categories categoryRepo.CategoryRepository
	Sujets     sujetRepo.SujetRepository
	// Index is optional.
	Index searchService.SujetIndex
	Log   zerolog.Logger
}

// Load inserts the fixtures. Categories and users that already exist are
// kept as they are, subjects are only added to categories created here, so
// loading twice changes nothing.
func (l *Loader) Load(ctx context.Context, f *Fixtures) error {
	created := make(map[string]*entity.Category)
	for _, name := range f.Categories {
		_, err := l.Categories.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cat := &entity.Category{Name: name}
		if err := l.Categories.Create(ctx, cat); err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}
		created[name] = cat
	}

	sujets := 0
	for _, s := range f.Sujets {
		cat, ok := created[s.Category]
		if !ok {
			continue
		}
		sujet := entity.NewSujet(s.Name)
		sujet.AttachTo(cat)
		if err := l.Sujets.Create(ctx, sujet); err != nil {
			return fmt.Errorf("create sujet %q: %w", s.Name, err)
		}
		if l.Index != nil {
			if err := l.Index.IndexSujet(sujet); err != nil {
				l.Log.Warn().Err(err).Uint("sujet_id", sujet.ID).Msg("failed to index fixture sujet")
			}
		}
		sujets++
	}

	users := 0
	for _, u := range f.Users {
		_, err := l.Users.FindByEmail(ctx, u.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := userService.HashPassword(u.Password)
		if err != nil {
			return err
		}
		user := entity.NewUser(u.Username, u.Email)
		user.PasswordHash = hash
		user.SetRoles(u.Roles...)
		user.MarkVerified()
		if err := l.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user %q: %w", u.Email, err)
		}
		users++
	}

	l.Log.Info().
		Int("categories", len(created)).
		Int("sujets", sujets).
		Int("users", users).
		Msg("fixtures loaded")
	return nil
}
