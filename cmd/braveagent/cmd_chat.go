package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mosaxiv/braveagent/agent"
	"github.com/mosaxiv/braveagent/console"
	"github.com/mosaxiv/braveagent/llm"
	"github.com/mosaxiv/braveagent/session"
	"github.com/mosaxiv/braveagent/tools"
	"github.com/urfave/cli/v3"
)

const welcomeBanner = "Welcome to the Brave Search Agent!\nType 'exit', 'quit', or 'bye' to end the conversation, /help for commands.\n"

func cmdChat() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "interactive chat (default when no command is given)",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := stderrLogger(cmd, cfg)

	model := cfg.Model
	if cmd.IsSet("model") {
		model = cmd.String("model")
	}
	maxIters := cfg.MaxIters
	if cmd.IsSet("max-iters") && cmd.Int("max-iters") > 0 {
		maxIters = cmd.Int("max-iters")
	}

	client := llm.New(llm.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   model,
		Log:     log,
	})
	ag, err := agent.New(agent.Options{
		LLM: client,
		Tools: &tools.Registry{
			Search: newSearchClient(cfg, log),
			Fetch:  newFetcher(cfg, log),
		},
		MaxIters: maxIters,
		Log:      log,
	})
	if err != nil {
		return err
	}
	log.Debug().Str("model", client.Model).Int("max_iters", maxIters).Msg("agent ready")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sess := session.New("")
	log.Debug().Str("session", sess.Key).Msg("session started")

	c := &console.Console{
		In:      os.Stdin,
		Out:     os.Stdout,
		Agent:   ag,
		Session: sess,
		Banner:  welcomeBanner,
	}
	return c.Run(ctx)
}
