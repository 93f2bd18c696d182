package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"quizparty/internal/app"
	"quizparty/internal/config"
	"quizparty/internal/domain"
	httpTransport "quizparty/internal/transport/http"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZPARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:           "quizparty-server",
		Short:         "Authoritative server for the quizparty trivia party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config.Load(v))
		},
	}

	fs := cmd.Flags()
	fs.StringP("host", "b", "0.0.0.0", "address to bind to (env: QUIZPARTY_HOST)")
	fs.StringP("port", "p", "8080", "port to listen on (env: QUIZPARTY_PORT)")
	fs.String("env", "development", "deployment environment (env: QUIZPARTY_ENV)")
	fs.Int("min-players", 3, "minimum players needed to start a game (env: QUIZPARTY_MIN_PLAYERS)")
	fs.Int("max-players", 10, "maximum players per room (env: QUIZPARTY_MAX_PLAYERS)")
	fs.Int("room-code-length", 6, "generated room code length, 4-6 (env: QUIZPARTY_ROOM_CODE_LENGTH)")
	fs.String("log-level", "info", "log level: debug, info, warn, error (env: QUIZPARTY_LOG_LEVEL)")
	fs.String("log-format", "text", "log format: text or json (env: QUIZPARTY_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})

	return cmd
}

func run(cfg *config.Config) error {
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting quizparty server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	settings := domain.RoomSettings{
		MinPlayers: cfg.Game.MinPlayers,
		MaxPlayers: cfg.Game.MaxPlayers,
	}

	registry := app.NewRegistry(cfg.Game.RoomCodeLength, settings, logger)
	defer registry.Close()

	server := httpTransport.NewServer(cfg, registry, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
