// Package cli implements forumctl, the maintenance command line of the forum.
package cli

import (
	"context"

	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Backend is what the commands operate on.
type Backend struct {
	Config *config.Config
	Deps   server.Dependencies
	Log    zerolog.Logger
	Close  func() error
}

// Opener connects a Backend. Commands call it lazily so that --help works
// without a database.
type Opener func(ctx context.Context) (*Backend, error)

func NewRootCommand(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forumctl",
		Short:         "Maintenance tasks for the community forum",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCreateUserCommand(open))
	rootCmd.AddCommand(newFixturesCommand(open))
	rootCmd.AddCommand(newTestEmailCommand(open))
	rootCmd.AddCommand(newResetRequestsCommand(open))

	return rootCmd
}

// withBackend opens the backend, runs fn and closes it.
func withBackend(cmd *cobra.Command, open Opener, fn func(ctx context.Context, b *Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := open(ctx)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer func() {
			if err := b.Close(); err != nil {
				b.Log.Warn().Err(err).Msg("failed to close backend")
			}
		}()
	}
	return fn(ctx, b)
}
