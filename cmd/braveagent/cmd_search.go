package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mosaxiv/braveagent/tools"
	"github.com/urfave/cli/v3"
)

func cmdSearch() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "run a Brave web search and print the results",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Value: 10, Usage: "results per page"},
			&cli.IntFlag{Name: "offset", Usage: "page offset"},
			&cli.StringFlag{Name: "country", Value: "US", Usage: "country code"},
			&cli.StringFlag{Name: "search-lang", Value: "en", Usage: "search language"},
			&cli.StringFlag{Name: "ui-lang", Value: "en-US", Usage: "UI language"},
			&cli.StringFlag{Name: "safesearch", Value: "moderate", Usage: "off, moderate or strict"},
			&cli.IntFlag{Name: "max-results", Usage: "collect up to N results across pages (0: single page)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := newSearchClient(cfg, stderrLogger(cmd, cfg))

			q := searchQueryFromFlags(cmd, query)
			var page *tools.SearchPage
			if n := cmd.Int("max-results"); n > 0 {
				page, err = client.SearchAll(ctx, q, n)
			} else {
				page, err = client.Search(ctx, q)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, tools.FormatSearchPage(page))
			return nil
		},
	}
}

func searchQueryFromFlags(cmd *cli.Command, query string) tools.SearchQuery {
	q := tools.NewSearchQuery(query)
	q.Count = cmd.Int("count")
	q.Offset = cmd.Int("offset")
	q.Country = cmd.String("country")
	q.SearchLang = cmd.String("search-lang")
	q.UILang = cmd.String("ui-lang")
	q.SafeSearch = cmd.String("safesearch")
	return q
}
