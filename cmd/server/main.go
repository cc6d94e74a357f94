package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/linkshelf/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// blocks until a signal arrives
	return application.Start(ctx)
}
