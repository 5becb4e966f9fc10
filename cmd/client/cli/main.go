package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bakerykit/internal/client/cli"
	"github.com/dmitrijs2005/bakerykit/internal/client/config"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, flush := logging.NewProductionLogger(cfg.LogLevel, os.Stderr)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		return
	}

	app.Run(ctx)

}
