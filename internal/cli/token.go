package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"singlepages/internal/infra/credentials"
)

type tokenSetter interface {
	Set(ctx context.Context, provider, token string) error
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage provider API keys stored in the database",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <openai|gemini|pixabay> <key>",
		Short: "Store or replace a provider API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, runner, closeDB, err := openSQL(cmd.Context(), "token")
			if err != nil {
				return err
			}
			defer closeDB()
			provider, err := setToken(cmd.Context(), credentials.NewStore(runner), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key stored successfully\n", strings.ToUpper(provider))
			return nil
		},
	})
	return cmd
}

func setToken(ctx context.Context, store tokenSetter, provider, key string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Set(ctx, provider, key); err != nil {
		return "", fmt.Errorf("persist %s api key: %w", provider, err)
	}
	return provider, nil
}
