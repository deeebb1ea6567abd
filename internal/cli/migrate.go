package cli

import (
	"context"
	"fmt"
	"time"

	"cms-backend/internal/config"
	"cms-backend/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbConfig, err := config.LoadDatabaseConfig()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db := database.NewPostgresDB(dbConfig)
			if err := db.Connect(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer db.Close()

			applied, err := database.Migrate(ctx, db.Pool, database.Migrations)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "migrate: schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "migrate: applied %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout for connecting and applying migrations")
	return cmd
}
