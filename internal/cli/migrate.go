package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"singlepages/internal/infra"
	"singlepages/internal/sqlinline"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the cities, page_cache and integration_tokens tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, runner, closeDB, err := openSQL(cmd.Context(), "migrate")
			if err != nil {
				return err
			}
			defer closeDB()
			if err := migrate(cmd.Context(), runner); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func migrate(ctx context.Context, sql infra.SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.QCreateSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
