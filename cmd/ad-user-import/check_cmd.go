package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isometry/ad-user-import/internal/ldap"
	"github.com/isometry/ad-user-import/internal/store"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directory and database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()

			client, err := ldap.NewClient(logger, connectionConfig(cfg))
			if err != nil {
				return fmt.Errorf("build directory client: %w", err)
			}
			defer client.Close()

			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("directory: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "directory: ok")

			db, err := store.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database: ok")

			return nil
		},
	}
	return cmd
}
