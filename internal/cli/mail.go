package cli

import (
	"context"
	"fmt"

	"anoa.com/communityforum/pkg/mailer"
	"github.com/spf13/cobra"
)

func newTestEmailCommand(open Opener) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a test email through the configured mailer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *Backend) error {
				err := b.Deps.Mailer.Send(ctx, mailer.Message{
					From:    b.Config.MailerFrom,
					To:      to,
					Subject: "Test de l'envoi d'emails",
					HTML:    "<p>Si vous lisez ce message, l'envoi d'emails du forum fonctionne.</p>",
				})
				if err != nil {
					return fmt.Errorf("send test email: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Email envoyé à %s\n", to)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
