package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/urfave/cli/v3"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var readBuildInfo = debug.ReadBuildInfo

type buildVersion struct {
	Version   string
	Commit    string
	GoVersion string
}

func (b buildVersion) String() string {
	var extra []string
	if b.Commit != "" {
		extra = append(extra, "commit "+b.Commit)
	}
	if b.GoVersion != "" {
		extra = append(extra, b.GoVersion)
	}
	if len(extra) == 0 {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, strings.Join(extra, ", "))
}

func cmdVersion() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version, commit and Go toolchain",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "%s %s\n", cmd.Root().Name, loadBuildVersion())
			return nil
		},
	}
}

func resolveVersion() string {
	return loadBuildVersion().Version
}

// loadBuildVersion prefers the linker-set version, then the module version
// stamped by `go install`. Commit is the short vcs.revision, if any.
func loadBuildVersion() buildVersion {
	out := buildVersion{Version: strings.TrimSpace(version)}
	bi, ok := readBuildInfo()
	if ok && bi != nil {
		out.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				out.Commit = s.Value[:min(7, len(s.Value))]
			}
		}
	}
	if out.Version != "" && out.Version != "dev" {
		return out
	}
	out.Version = "dev"
	if ok && bi != nil {
		if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
			out.Version = mv
		}
	}
	return out
}
