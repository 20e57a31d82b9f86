package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/kiosk"
	"github.com/brewbarclub/brewbar/internal/session"
)

const (
	appNamespace = "KIOSK"
	appName      = "kiosk"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	sessionFile, _ := config.GetString("session.path")
	if sessionFile == "" {
		sessionFile = session.DefaultPath()
	}
	sessions := session.NewStore(sessionFile, logger)

	client, err := api.NewClient(config, sessions, logger)
	if err != nil {
		log.Fatalf("Cannot create API client: %v", err)
	}

	k := kiosk.New(client, sessions, os.Stdin, os.Stdout, logger)

	if err := k.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}
}
