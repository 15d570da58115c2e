package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnsphere-backend/internal/app"
	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/services"
)

func creditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Manage user credit balances",
	}
	cmd.AddCommand(creditsGrantCmd())
	return cmd
}

func creditsGrantCmd() *cobra.Command {
	var (
		email  string
		amount int
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Add credits to a user's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := app.Bootstrap()
			if err != nil {
				return err
			}
			defer base.Close()

			users := services.NewUserService(base.Log, repos.NewUserRepo(base.DB(), base.Log))
			u, err := users.GrantCredits(withContext(cmd), email, amount)
			if err != nil {
				return fmt.Errorf("grant credits: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d credits\n", u.Email, u.Credits)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().IntVar(&amount, "amount", 0, "credits to add")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
