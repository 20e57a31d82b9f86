package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/checkout"
	"github.com/brewbarclub/brewbar/internal/counter"
	"github.com/brewbarclub/brewbar/internal/queue"
	"github.com/brewbarclub/brewbar/internal/session"
)

const (
	appNamespace = "COUNTER"
	appName      = "counter"
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

	sessions := session.NewStore(sessionPath(config), logger)

	client, err := api.NewClient(config, sessions, logger)
	if err != nil {
		log.Fatalf("Cannot create API client: %v", err)
	}

	lifecycle := checkout.NewLifecycle(checkout.Deps{
		Client:   client,
		Sessions: sessions,
	}, logger)

	queueCtrl := queue.NewController(queue.Deps{
		Client:   client,
		Statuses: lifecycle,
		OnError: func(err error) {
			logger.Info("queue refresh failed", "error", err)
		},
	}, logger)

	handlerDeps := counter.HandlerDeps{
		Queue:    queueCtrl,
		Sessions: sessions,
		Auth:     client,
	}

	var lifecycles []interface{}

	natsURL, _ := config.GetString("nats.url")
	if natsURL != "" {
		publisher, err := counter.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("Cannot connect to NATS publisher: %v", err)
		}
		handlerDeps.Publisher = publisher
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error { return publisher.Close() },
		})
	}

	handler := counter.NewHandler(handlerDeps, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	go queueCtrl.Run(ctx)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func sessionPath(config *apt.Config) string {
	if path, _ := config.GetString("session.path"); path != "" {
		return path
	}
	return session.DefaultPath()
}
