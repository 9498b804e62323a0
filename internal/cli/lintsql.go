package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"singlepages/internal/sqllint"
)

func newLintSQLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint-sql [path ...]",
		Short: "Check that SQL constants carry a --sql <uuid> marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			violations, err := sqllint.Paths(args)
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				return nil
			}
			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, "sqllint: missing SQL audit markers")
			for _, v := range violations {
				fmt.Fprintf(out, "  %s:%d %s (%s)\n", v.File, v.Line, v.Message, v.Name)
			}
			return fmt.Errorf("%d unmarked SQL constants", len(violations))
		},
	}
}
