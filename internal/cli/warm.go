package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"singlepages/internal/domain"
	"singlepages/internal/pages"
)

type pageWarmer interface {
	Lookup(ctx context.Context, slug string) (*domain.City, error)
	Generate(ctx context.Context, city domain.City) pages.Result
	Regenerate(ctx context.Context, city domain.City) pages.Result
}

type warmTarget struct {
	slug string
	city *domain.City
}

type cityLister interface {
	ListAll(ctx context.Context) ([]domain.City, error)
}

func newWarmCommand() *cobra.Command {
	var all, force bool
	cmd := &cobra.Command{
		Use:   "warm [slug ...]",
		Short: "Generate and cache city pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return cmd.Usage()
			}
			deps, err := openDeps(cmd.Context(), "warm")
			if err != nil {
				return err
			}
			defer deps.Close()
			return warm(cmd.Context(), cmd.OutOrStdout(), deps.Pages, deps.Cities, args, all, force)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "warm every city in the database")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when a valid cached page exists")
	return cmd
}

// warm generates the page of every slug and prints one status line each.
// Without force, valid cached pages are left untouched.
func warm(ctx context.Context, out io.Writer, svc pageWarmer, cities cityLister, slugs []string, all, force bool) error {
	var targets []warmTarget
	if all {
		list, err := cities.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list cities: %w", err)
		}
		for i := range list {
			targets = append(targets, warmTarget{slug: list[i].Slug, city: &list[i]})
		}
	}
	for _, slug := range slugs {
		city, err := svc.Lookup(ctx, slug)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("lookup %q: %w", slug, err)
		}
		targets = append(targets, warmTarget{slug: domain.NormalizeSlug(slug), city: city})
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	failed := 0
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		if t.city == nil {
			failed++
			fmt.Fprintf(tw, "%s\tnot_found\t\n", t.slug)
			continue
		}
		var res pages.Result
		if force {
			res = svc.Regenerate(ctx, *t.city)
		} else {
			res = svc.Generate(ctx, *t.city)
		}
		state := "generated"
		if res.Cached {
			state = "cached"
		}
		switch res.Kind {
		case pages.KindOk:
			fmt.Fprintf(tw, "%s\t%s\t%d warnings\n", res.Slug, state, len(res.Warnings))
		default:
			failed++
			fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Slug, res.Kind, res.Message())
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(targets))
	}
	return nil
}
