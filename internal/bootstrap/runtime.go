package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/communityforum/internal/config"
	searchService "anoa.com/communityforum/internal/modules/search/service"
	"anoa.com/communityforum/internal/server"
	"anoa.com/communityforum/pkg/cache"
	"anoa.com/communityforum/pkg/database"
	"anoa.com/communityforum/pkg/mailer"
	"anoa.com/communityforum/pkg/pwned"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Runtime holds the external connections of a running process.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Deps  server.Dependencies
}

// Open connects to PostgreSQL, runs the migrations and sets up the optional
// collaborators. Redis and Meilisearch are skipped when not configured or
// unreachable.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	rt := &Runtime{DB: db, Deps: server.RepositoriesFromDB(db)}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limiting and member count cache disabled")
		} else {
			rt.Redis = client
			rt.Deps.Redis = client
		}
	}

	if cfg.MeiliSearchHost != "" {
		client := meilisearch.New(meiliHost(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		rt.Deps.Index = searchService.NewMeiliSearchService(client, log)
	}

	m, err := mailer.New(cfg.MailerDSN, log)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}
	rt.Deps.Mailer = m

	if cfg.PwnedCheck {
		rt.Deps.Pwned = pwned.NewClient("")
	}

	return rt, nil
}

func (r *Runtime) Close() error {
	var errs []error
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = append(errs, database.Close(r.DB))
	}
	return errors.Join(errs...)
}

func meiliHost(host string) string {
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
