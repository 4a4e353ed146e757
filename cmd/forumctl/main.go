package main

import (
	"context"
	"fmt"
	"os"

	"anoa.com/communityforum/internal/bootstrap"
	"anoa.com/communityforum/internal/cli"
	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/logger"
)

func main() {
	root := cli.NewRootCommand(open)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(ctx context.Context) (*cli.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.AppEnv)

	rt, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &cli.Backend{
		Config: cfg,
		Deps:   rt.Deps,
		Log:    log,
		Close:  rt.Close,
	}, nil
}
