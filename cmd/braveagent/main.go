package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:    "braveagent",
		Usage:   "chat with an LLM agent that searches the web with Brave",
		Version: resolveVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "dotenv file to load (default: ./.env, then ~/.braveagent/.env)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
			&cli.IntFlag{Name: "max-iters", Usage: "max tool-call iterations per turn (default from AGENT_MAX_ITERS)"},
			&cli.StringFlag{Name: "model", Usage: "model name (default from MODEL_NAME)"},
		},
		Commands: []*cli.Command{
			cmdChat(),
			cmdSearch(),
			cmdFetch(),
			cmdSetup(),
			cmdVersion(),
		},
		Action: runChat,
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		cli.HandleExitCoder(err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
