package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"personal-website/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "blogctl",
		Usage: "Run the blog API locally and manage posts.",
		Commands: []*cli.Command{
			ServeCmd,
			PostsCmd,
			TagsCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
