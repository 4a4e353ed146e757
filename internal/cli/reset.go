package cli

import (
	"context"
	"fmt"

	resetService "anoa.com/communityforum/internal/modules/resetpassword/service"
	"github.com/spf13/cobra"
)

func newResetRequestsCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-requests",
		Short: "Manage password reset requests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired password reset requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *Backend) error {
				svc := resetService.NewResetPasswordService(b.Deps.ResetRequests, b.Deps.Users, b.Deps.Mailer, b.Deps.Pwned, resetService.Config{
					From:       b.Config.MailerFrom,
					BaseURL:    b.Config.BaseURL,
					SigningKey: b.Config.ResetSigningKey,
					Lifetime:   b.Config.ResetLifetime,
					Throttle:   b.Config.ResetThrottle,
				}, b.Log)

				n, err := svc.PurgeExpired(ctx)
				if err != nil {
					return fmt.Errorf("purge reset requests: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d demande(s) expirée(s) supprimée(s)\n", n)
				return nil
			})
		},
	})

	return cmd
}
