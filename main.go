package main

import (
	"context"
	"log"
	"os"

	"github.com/example/anon-chat-hub/config"
	"github.com/example/anon-chat-hub/modules/api"
	"github.com/example/anon-chat-hub/modules/broadcast"
	"github.com/example/anon-chat-hub/modules/chat"
	"github.com/example/anon-chat-hub/modules/stats"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg := config.Load()

	logLevel := mono.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = mono.LogLevelDebug
	case "warn":
		logLevel = mono.LogLevelWarn
	case "error":
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()
	for _, w := range cfg.Warnings {
		logger.Warn("Invalid configuration", "detail", w)
	}

	// Create modules
	broadcastModule := broadcast.NewModule(cfg.SendBuffer, logger.WithModule("broadcast"))
	chatModule := chat.NewModule(broadcastModule.GetHub(), logger.WithModule("chat"))
	statsModule := stats.NewModule(logger.WithModule("stats"))
	statsModule.WatchConnections(broadcastModule.GetHub().ClientCount)

	apiModule, err := api.NewModule(api.Config{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		SendBuffer:     broadcastModule.SendBuffer(),
	}, logger.WithModule("api"))
	if err != nil {
		log.Fatalf("Failed to create api module: %v", err)
	}

	// The hub, room and stats are not exposed via ServiceContainer.
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetRoom(chatModule.Room())
	apiModule.SetStats(statsModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - broadcast: WebSocket hub the room emits through
	// - chat: presence, message log and room (ServiceProviderModule + EventEmitterModule)
	// - stats: EventConsumerModule feeding counters and /metrics
	// - api: Fiber HTTP/WebSocket server, depends on chat
	app.Register(broadcastModule)
	app.Register(chatModule)
	app.Register(statsModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Application started",
		"addr", cfg.Addr(),
		"websocket", "/ws",
		"rest", "/api/v1/users, /api/v1/chat, /api/v1/stats",
		"metrics", "/metrics",
	)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", "code", exitCode)
	os.Exit(exitCode)
}
