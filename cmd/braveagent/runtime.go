package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mosaxiv/braveagent/config"
	"github.com/mosaxiv/braveagent/paths"
	"github.com/mosaxiv/braveagent/tools"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// envFiles lists dotenv files in precedence order: --env-file alone when
// given, otherwise ./.env then the per-user file.
func envFiles(cmd *cli.Command) []string {
	if f := strings.TrimSpace(cmd.String("env-file")); f != "" {
		return []string{f}
	}
	files := []string{config.DefaultEnvFile}
	if p, err := paths.EnvPath(); err == nil {
		files = append(files, p)
	}
	return files
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(envFiles(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("%w\nhint: run `braveagent setup`", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func stderrLogger(cmd *cli.Command, cfg *config.Config) *zerolog.Logger {
	log := newLogger(os.Stderr, cfg.LogLevel, cmd.Bool("verbose"))
	return &log
}

func newSearchClient(cfg *config.Config, log *zerolog.Logger) *tools.SearchClient {
	return tools.NewSearchClient(tools.SearchOptions{
		APIKey:     cfg.BraveAPIKey,
		Endpoint:   cfg.BraveSearchURL,
		MaxRetries: cfg.BraveMaxRetries,
		Log:        log,
	})
}

func newFetcher(cfg *config.Config, log *zerolog.Logger) *tools.Fetcher {
	return tools.NewFetcher(tools.FetchOptions{
		Timeout:        cfg.FetchTimeout,
		MaxChars:       cfg.FetchMaxChars,
		AllowedDomains: cfg.FetchAllowedDomains,
		BlockedDomains: cfg.FetchBlockedDomains,
		Log:            log,
	})
}
