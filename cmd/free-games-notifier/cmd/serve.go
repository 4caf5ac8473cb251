package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/free-games-notifier/api/openapi"
	"github.com/donaldgifford/free-games-notifier/internal/api/handlers"
	mw "github.com/donaldgifford/free-games-notifier/internal/api/middleware"
	"github.com/donaldgifford/free-games-notifier/internal/config"
	"github.com/donaldgifford/free-games-notifier/internal/engine"
	"github.com/donaldgifford/free-games-notifier/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and scheduler",
		Long: "Runs the HTTP API (check trigger, probes, metrics, OpenAPI docs) and\n" +
			"the cron scheduler that runs a check on the configured schedule.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a := newApp(cfg, log)

	sched, err := engine.NewScheduler(
		a.engine,
		cfg.Schedule.Cron,
		cfg.Schedule.Location(),
		cfg.Schedule.CycleTimeout,
		log.With("component", "scheduler"),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := newServer(cfg, log, a)

	sched.Start()
	if cfg.Schedule.RunOnStart {
		sched.RunOnStart()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server",
			"addr", cfg.Server.Addr(),
			"state_file", a.store.Path(),
			"schedule", cfg.Schedule.Cron,
			"timezone", cfg.Schedule.Location().String(),
		)
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			<-sched.Stop().Done()
			return fmt.Errorf("running server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	select {
	case <-sched.Stop().Done():
	case <-sctx.Done():
		log.Warn("scheduled check still running at shutdown")
	}

	log.Info("server stopped")
	return nil
}

func newServer(cfg *config.Config, log *slog.Logger, a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	httpLog := log.With("component", "http")
	e.Use(mw.Recovery(httpLog))
	e.Use(mw.RequestLog(httpLog))
	e.Use(mw.Tracing())
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(a.store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	openapi.RegisterRoutes(e)
	registerAPI(humaecho.New(e, humaConfig()), a)

	return e
}

func humaConfig() huma.Config {
	cfg := huma.DefaultConfig("free-games-notifier", Version)
	cfg.Info.Description = "Announces Epic Games Store free games to a Discord webhook."
	return cfg
}

func registerAPI(api huma.API, a *app) {
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(a.engine))
	handlers.RegisterOffersRoutes(api, handlers.NewOffersHandler(a.catalog))
}
