// Package cli implements the pagectl operator commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"singlepages/internal/bootstrap"
	"singlepages/internal/infra"
)

// Execute runs pagectl and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree writing its reports to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pagectl",
		Short:         "Operate the regional singles page service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.SetOut(out)
	root.AddCommand(
		newMigrateCommand(),
		newWarmCommand(),
		newSitemapCommand(),
		newTokenCommand(),
		newLintSQLCommand(),
	)
	return root
}

func loadConfig(cmd string) (*infra.Config, infra.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, infra.Logger{}, err
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", cmd).Logger()
	return cfg, logger, nil
}

func openDeps(ctx context.Context, cmd string) (*bootstrap.Deps, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.Open(ctx, cfg, logger)
}

// openSQL connects without building the page service graph.
func openSQL(ctx context.Context, cmd string) (*infra.Config, *infra.SQLRunner, func(), error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, infra.NewSQLRunner(pool, logger), pool.Close, nil
}
