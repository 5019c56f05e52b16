package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"personal-website/internal/config"
	"personal-website/internal/devserver"
	"personal-website/internal/handler"
	"personal-website/internal/repository"
	"personal-website/internal/telemetry"
	"personal-website/pkg/logger"
)

var ServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "serve the read and write handlers over HTTP for local development",
	Flags: []cli.Flag{
		EnvFileFlag,
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "listen address",
			EnvVars: []string{"BLOG_HTTP_ADDR"},
			Value:   ":8080",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if err := loadEnvFile(cCtx.String(EnvFileFlag.Name)); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.SetLevel(cfg.LogLevel)

		if err := telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment); err != nil {
			logger.Warn("error reporting disabled", "error", err)
		}
		defer telemetry.Flush()

		ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		table, err := repository.New(ctx, cfg)
		if err != nil {
			return err
		}
		router := handler.NewRouter(
			handler.NewRead(table, cfg.ListLimit),
			handler.NewWrite(table),
		)
		return devserver.Run(ctx, cCtx.String("addr"), router.Handle)
	},
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
