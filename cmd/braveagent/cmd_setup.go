package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mosaxiv/braveagent/config"
	"github.com/mosaxiv/braveagent/paths"
	"github.com/urfave/cli/v3"
)

func cmdSetup() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "write API keys and model name to a dotenv file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file without asking"},
			&cli.BoolFlag{Name: "global", Usage: "write ~/.braveagent/.env instead of ./.env"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("env-file")
			if cmd.Bool("global") {
				if err := paths.EnsureConfigDir(); err != nil {
					return err
				}
				p, err := paths.EnvPath()
				if err != nil {
					return err
				}
				path = p
			}
			return runSetup(cmd.Root().Reader, cmd.Root().Writer, path, cmd.Bool("force"))
		},
	}
}

func runSetup(in io.Reader, out io.Writer, path string, force bool) error {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultEnvFile
	}
	r := bufio.NewReader(in)
	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	if _, err := os.Stat(path); err == nil && !force {
		ans, err := ask(fmt.Sprintf("%s already exists. Overwrite? (y/n): ", path))
		if err != nil {
			return err
		}
		if !strings.EqualFold(ans, "y") {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	openaiKey, err := ask("Enter your OpenAI API key: ")
	if err != nil {
		return err
	}
	braveKey, err := ask("Enter your Brave Search API key: ")
	if err != nil {
		return err
	}
	model, err := ask(fmt.Sprintf("Enter the model name (default: %s): ", config.DefaultModel))
	if err != nil {
		return err
	}
	if model == "" {
		model = config.DefaultModel
	}

	if err := config.WriteEnvFile(path, map[string]string{
		"OPENAI_API_KEY": openaiKey,
		"BRAVE_API_KEY":  braveKey,
		"MODEL_NAME":     model,
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s written. Run `braveagent` to start chatting.\n", path)
	return nil
}
