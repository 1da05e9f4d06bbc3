package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "fetch a web page and print its readable text",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-chars", Usage: "truncate output to N characters (default from FETCH_MAX_CHARS)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rawURL := strings.TrimSpace(cmd.Args().First())
			if rawURL == "" {
				return fmt.Errorf("url is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if n := cmd.Int("max-chars"); n > 0 {
				cfg.FetchMaxChars = n
			}

			page, err := newFetcher(cfg, stderrLogger(cmd, cfg)).Fetch(ctx, rawURL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, page.String())
			return nil
		},
	}
}
