package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/pitwall-bot/app"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cliApp := &cli.App{
		Name:  "pitwall",
		Usage: "F1 prediction league bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			seasonCommand(),
			raceCommand(),
			betCommand(),
			teamCommand(),
			rivalryCommand(),
			achievementCommand(),
			standingsCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// withApp loads the configuration, builds the application for one command
// and closes it afterwards.
func withApp(c *cli.Context, logFile string, fn func(a *app.App) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := observability.NewLogger(cfg.Logging, cfg.Observability.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logCloser.Close()

	a, err := app.NewApp(c.Context, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Error during shutdown", "error", err)
		}
	}()

	return fn(a)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the phase scheduler, the job workers and the ops server",
		Action: func(c *cli.Context) error {
			return withApp(c, "pitwall.log", func(a *app.App) error {
				return a.Run(c.Context)
			})
		},
	}
}
