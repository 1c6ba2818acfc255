package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	callmemory "github.com/Wyydra/speakerbox/internal/adapter/driven/call/memory"
	"github.com/Wyydra/speakerbox/internal/adapter/driven/gateway/ws"
	"github.com/Wyydra/speakerbox/internal/adapter/driven/notify"
	repo "github.com/Wyydra/speakerbox/internal/adapter/driven/persistence/memory"
	handler "github.com/Wyydra/speakerbox/internal/adapter/driving/http"
	"github.com/Wyydra/speakerbox/internal/config"
	"github.com/Wyydra/speakerbox/internal/core/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var addr, logLevel string

	cmd := &cobra.Command{
		Use:           "speakerbox",
		Short:         "Call manager service with an in-process call backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SPEAKERBOX_ADDR)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides SPEAKERBOX_LOG_LEVEL)")
	return cmd
}

func newLogger(cfg config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

func run(ctx context.Context, cfg config.Config) error {
	l := newLogger(cfg)
	log.Logger = l

	center := notify.NewCenter()
	registry := service.NewCallRegistry(center)
	history := repo.NewTransactionRepository(cfg.TransactionHistory)
	controller := callmemory.NewController(registry, callmemory.Options{
		MaxCalls:  cfg.MaxCalls,
		DialDelay: cfg.DialDelay,
	})
	hub := ws.NewHub()

	callService := service.NewCallService(controller, history)
	h := handler.NewHandler(callService, registry, controller, history, hub)
	stopWatching := h.WatchCalls(center)

	go hub.Run()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.NewRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("addr", cfg.Addr).Int("max_calls", cfg.MaxCalls).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		l.Info().Msg("Shutting down server...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopWatching()
	controller.Close()
	registry.RemoveAll(context.Background())
	hub.Stop()

	l.Info().Msg("Server exited")
	return serveErr
}
