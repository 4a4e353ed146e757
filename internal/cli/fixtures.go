package cli

import (
	"context"
	"fmt"
	"os"

	"anoa.com/communityforum/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newFixturesCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Manage demo data",
	}

	var file string
	load := &cobra.Command{
		Use:   "load",
		Short: "Load demo categories, subjects and members",
		Long: `Load the demo categories, subjects and members. Existing categories and
members are left untouched, so the command can be run more than once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := readFixtures(file)
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b *Backend) error {
				loader := &bootstrap.Loader{
					Users:      b.Deps.Users,
					Categories: b.Deps.Categories,
					Sujets:     b.Deps.Sujets,
					Index:      b.Deps.Index,
					Log:        b.Log,
				}
				if err := loader.Load(ctx, fixtures); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Fixtures chargées.")
				return nil
			})
		},
	}
	load.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file (default: built-in demo data)")

	cmd.AddCommand(load)
	return cmd
}

func readFixtures(file string) (*bootstrap.Fixtures, error) {
	if file == "" {
		return bootstrap.DefaultFixtures()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return bootstrap.ParseFixtures(data)
}
