package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/fhttp/board"
	"i4.energy/across/fhttp/lua"
)

func main() {
	flag.String("serial-port", "/dev/ttyACM0", "Serial port the WiFi board is attached to")
	flag.Int("baud-rate", board.DefaultBaudRate, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP bridge")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("body-mode", "first-line", "Response body handling (first-line, accumulate)")
	flag.Duration("read-timeout", 500*time.Millisecond, "Timeout for each board read attempt")
	flag.String("script", "", "Run a Lua script against the board and exit")
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	bodyMode, err := parseBodyMode(config.BodyMode)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	boardConfig, err := board.NewConfigBuilder().
		WithReadTimeout(config.ReadTimeout).
		WithBodyMode(bodyMode).
		WithLogger(logger.With("component", "board")).
		WithDialer(board.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create board config", "error", err)
		os.Exit(1)
	}

	if config.Script != "" {
		os.Exit(runScript(logger, boardConfig, config.Script))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := board.New(ctx, boardConfig)
	if err != nil {
		logger.Error("Failed to open board", "error", err, "port", config.SerialPort)
		os.Exit(1)
	}

	if err := b.Ping(ctx); err != nil {
		logger.Warn("Board did not answer ping", "error", err)
	}

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Board:  b,
		},
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	logger.Info("Closing board connection")
	if err := b.Close(); err != nil {
		logger.Error("Failed to close board", "error", err)
	}
}

// runScript executes a Lua file with the fhttp module bound and returns
// the process exit code. The script opens the board itself via fhttp.init().
// SIGINT and SIGTERM interrupt the script.
func runScript(logger *slog.Logger, config board.Config, path string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	module := lua.NewModule(lua.BoardOpener(config), logger.With("component", "lua"))
	runner := lua.NewRunner(ctx, module)
	defer runner.Close()

	logger.Info("Running script", "path", path)
	if err := runner.DoFile(path); err != nil {
		logger.Error("Script failed", "path", path, "error", err)
		return 1
	}
	return 0
}
