package home

import (
	"context"
	"fmt"

	"anoa.com/communityforum/internal/entity"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
)

const pageSize = 5

// Overview is everything the home page lists.
type Overview struct {
	LatestSujets  []*entity.Sujet
	TopDiscussed  []sujetRepo.TopDiscussed
	LatestMembers []*entity.User
}

type HomeService interface {
	GetOverview(ctx context.Context) (*Overview, error)
}

type homeService struct {
	sujetRepo sujetRepo.SujetRepository
	userRepo  userRepo.UserRepository
}

func NewHomeService(sujetRepo sujetRepo.SujetRepository, userRepo userRepo.UserRepository) HomeService {
	return &homeService{
		sujetRepo: sujetRepo,
		userRepo:  userRepo,
	}
}

func (s *homeService) GetOverview(ctx context.Context) (*Overview, error) {
	latest, err := s.sujetRepo.FindLatest(ctx, pageSize)
	if err != nil {
		return nil, fmt.Errorf("latest sujets: %w", err)
	}
	top, err := s.sujetRepo.FindTopDiscussed(ctx, pageSize)
	if err != nil {
		return nil, fmt.Errorf("top discussed sujets: %w", err)
	}
	members, err := s.userRepo.FindLatest(ctx, pageSize)
	if err != nil {
		return nil, fmt.Errorf("latest members: %w", err)
	}

	return &Overview{
		LatestSujets:  latest,
		TopDiscussed:  top,
		LatestMembers: members,
	}, nil
}
