package cli

import (
	"context"
	"fmt"

	statService "anoa.com/communityforum/internal/modules/stat/service"
	"anoa.com/communityforum/internal/modules/user/dto"
	userService "anoa.com/communityforum/internal/modules/user/service"
	"github.com/spf13/cobra"
)

func newCreateUserCommand(open Opener) *cobra.Command {
	var input dto.CreateUserInput

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an active, verified member",
		Example: `  forumctl create-user --username ElsaQueen --email elsa.qn@mail.com --password elsa --admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *Backend) error {
				stats := statService.NewStatService(b.Deps.Users, b.Deps.Redis, b.Config.MemberCountTTL, b.Log)
				users := userService.NewUserService(b.Deps.Users, nil, stats, b.Log)
				user, err := users.CreateUser(ctx, input)
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Membre %s créé (id %d, rôles %v)\n", user.Username, user.ID, user.GetRoles())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "plain password")
	cmd.Flags().BoolVar(&input.Admin, "admin", false, "grant ROLE_ADMIN")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
