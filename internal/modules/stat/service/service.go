package service

import (
	"context"
	"strconv"
	"time"

	"anoa.com/communityforum/internal/modules/user/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const totalUsersKey = "stats:total_users"

type StatService interface {
	// GetTotalUsers returns the member count, cached in redis for the
	// configured ttl when a client is set.
	GetTotalUsers(ctx context.Context) (int64, error)
	InvalidateTotalUsers(ctx context.Context)
}

type statService struct {
	userRepo    repository.UserRepository
	redisClient *redis.Client
	ttl         time.Duration
	log         zerolog.Logger
}

func NewStatService(userRepo repository.UserRepository, redisClient *redis.Client, ttl time.Duration, log zerolog.Logger) StatService {
	return &statService{
		userRepo:    userRepo,
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	if s.redisClient == nil || s.ttl <= 0 {
		return s.userRepo.Count(ctx)
	}

	cached, err := s.redisClient.Get(ctx, totalUsersKey).Result()
	if err == nil {
		if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			return n, nil
		}
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Msg("failed to read member count from redis")
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.redisClient.Set(ctx, totalUsersKey, count, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache member count")
	}
	return count, nil
}

func (s *statService) InvalidateTotalUsers(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, totalUsersKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate member count")
	}
}
