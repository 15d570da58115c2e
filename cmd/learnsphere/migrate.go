package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnsphere-backend/internal/app"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Auto-migrate the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := app.Bootstrap()
			if err != nil {
				return err
			}
			defer base.Close()
			if err := base.Migrate(); err != nil {
				return err
			}
			base.Log.Info("Migrations applied", "driver", base.Cfg.DB.Driver)
			return nil
		},
	}
}
