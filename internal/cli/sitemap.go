package cli

import (
	"time"

	"github.com/spf13/cobra"

	"singlepages/internal/adapter/repo"
	"singlepages/internal/http/handlers"
)

func newSitemapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, runner, closeDB, err := openSQL(cmd.Context(), "sitemap")
			if err != nil {
				return err
			}
			defer closeDB()
			cities, err := repo.NewCityRepository(runner).ListAll(cmd.Context())
			if err != nil {
				return err
			}
			body, err := handlers.BuildSitemap(cfg.SiteBaseURL, cities, time.Now())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}
