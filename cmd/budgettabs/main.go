package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/budgettabs/budgettabs/internal/cli"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := cli.NewRootCommand().ExecuteContext(ctx); errRun != nil {
		log.WithError(errRun).Error("command failed")
		stop()
		os.Exit(1)
	}
}
