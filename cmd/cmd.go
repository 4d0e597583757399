package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run is the program entry point behind main.
func Run(version, commitHash string) {
	app := &cli.App{
		Name:    "deskrelay",
		Usage:   "share and remote-control a single screen over the local network",
		Version: fmt.Sprintf("%s (%s)", version, commitHash),
		Commands: []*cli.Command{
			serveCmd(version),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
