package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/communityforum/internal/bootstrap"
	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/logger"
	"anoa.com/communityforum/internal/server"
	"github.com/gin-gonic/gin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.New("production")
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.AppEnv)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rt, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close connections")
		}
	}()

	if cfg.IsDevelopment() {
		fixtures, err := bootstrap.DefaultFixtures()
		if err != nil {
			return fmt.Errorf("invalid fixtures: %w", err)
		}
		loader := &bootstrap.Loader{
			Users:      rt.Deps.Users,
			Categories: rt.Deps.Categories,
			Sujets:     rt.Deps.Sujets,
			Index:      rt.Deps.Index,
			Log:        log,
		}
		if err := loader.Load(ctx, fixtures); err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
	}

	srv, err := server.NewServer(cfg, rt.Deps, log)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
