package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/docdigest/docdigest/internal/adapters/http"
	"github.com/docdigest/docdigest/internal/bootstrap"
	"github.com/docdigest/docdigest/internal/config"
	"github.com/docdigest/docdigest/internal/observability/logging"
	"github.com/docdigest/docdigest/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("docdigest-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	serverMetrics := metrics.NewServerMetrics("docdigest-api")
	handler := httpadapter.NewRouter(app.Summarizer, app.Ranker, app.Loader, serverMetrics, cfg).Handler()

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: handler,
		// Long documents hold the connection through every model pass.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
