package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/a-thread/elysia-sub000/config"
	"github.com/a-thread/elysia-sub000/export"
	"github.com/a-thread/elysia-sub000/fetcher"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	format  string
	out     string
	proxy   string
	timeout time.Duration
}

func newScrapeCmd() *cobra.Command {
	opts := scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape <url> [--format json|markdown] [--out file]",
		Short: "Scrapes a recipe page and writes the recipe as JSON or Markdown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", "json", "Output format: json or markdown.")
	flags.StringVar(&opts.out, "out", "", "File to write to instead of stdout.")
	flags.StringVar(&opts.proxy, "proxy", config.DefaultProxyURL, "Pass-through proxy prefix the target URL is appended to.")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Upper bound for fetching and parsing.")
	return cmd
}

func runScrape(ctx context.Context, stdout io.Writer, targetURL string, opts scrapeOptions) error {
	if opts.format != "json" && opts.format != export.FormatMarkdown {
		return fmt.Errorf("unsupported format %q: use json or markdown", opts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	sc := scraper.New(fetcher.NewProxyFetcher(fetcher.Options{ProxyURL: opts.proxy}))
	recipe, err := sc.Scrape(ctx, targetURL)
	if err != nil {
		return err
	}

	var out []byte
	if opts.format == "json" {
		out, err = json.MarshalIndent(recipe, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal recipe: %w", err)
		}
		out = append(out, '\n')
	} else {
		md, err := export.NewExporter().Render(recipe, export.FormatMarkdown)
		if err != nil {
			return err
		}
		out = []byte(md)
	}

	if opts.out == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.out, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	fmt.Fprintf(stdout, "OK -> %s (%d ingredients, %d steps)\n", opts.out, len(recipe.Ingredients), len(recipe.Steps))
	return nil
}
