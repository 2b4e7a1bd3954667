package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"event-service/core/logger"
	"event-service/core/server"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "event-service",
		Usage: "Events API with update notifications by email",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
