package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"chat-server/internal"
	"chat-server/moderation"
	chatruntime "chat-server/runtime"
	"chat-server/runtime/workers"
	"chat-server/server"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper. Its only responsibility
	// is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatsrv terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer executes before the process
// exits.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	// `chatsrv [port]` overrides the environment, like the env overrides
	// the default.
	if len(os.Args) >= 2 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil {
			return exitConfig, fmt.Errorf("invalid port argument %q: %w", os.Args[1], err)
		}
		config.Port = port
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation (optional)
	var censor chatruntime.Censor
	if config.ModerationEnabled {
		mask, err := config.CharacterRune()
		if err != nil {
			return exitConfig, err
		}
		data, err := chatruntime.LoadCensoredWords()
		if err != nil {
			return exitRuntime, fmt.Errorf("censored words loading failed: %w", err)
		}
		logger.Info(fmt.Sprintf("%d unique censored words loaded [%d languages]",
			len(data.Words), len(data.Languages)))

		moderator, err := moderation.NewModerator(data.Words, mask, logger)
		if err != nil {
			return exitRuntime, fmt.Errorf("moderator build failed: %w", err)
		}
		censor = moderator
	}

	// 3. Engine
	registry := chatruntime.NewRegistry()
	router := chatruntime.NewRouter(logger, registry, censor)

	// The listener is bound here, before supervision starts: a bind
	// failure is a startup error, not something to restart through.
	listener, err := net.Listen("tcp", config.Addr())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Addr(), err)
	}

	srv := server.New(logger, listener, registry, router, config.WriteTimeout)
	stats := workers.NewStatsWorker(logger, config.StatsInterval, registry)

	// 4. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised run; blocks until a signal cancels the context and
	// every worker (acceptor included) has drained.
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(srv, stats).Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}
