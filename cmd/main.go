package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "charging_console/docs"
	"charging_console/internal/config"
	"charging_console/internal/handlers"
	"charging_console/internal/logger"
	"charging_console/internal/metrics"
	"charging_console/internal/poller"
	"charging_console/internal/repository"
	"charging_console/internal/repository/db"
	"charging_console/internal/server"
	"charging_console/internal/service"
	"charging_console/internal/upstream"
)

const shutdownTimeout = 10 * time.Second

// @title                       Charging Console API
// @version                     1.0
// @description                 Live operations console for OCPP charging stations.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for poll sessions and the journal writer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos := repository.NewRepository(sqlDB)
	backend := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.APIToken, cfg.Upstream.Timeout)
	obs := metrics.NewPromObs(nil)
	clock := poller.RealClock()

	journal := service.NewPollJournal(repos.PollEvents, clock, log.Named("journal"))
	journalDone := make(chan struct{})
	go func() {
		journal.Run(ctx)
		close(journalDone)
	}()
	go runPruner(ctx, journal, cfg.Journal)

	services := service.NewService(ctx, service.Deps{
		Backend:          backend,
		AuthBackend:      backend,
		Repos:            repos,
		Journal:          journal,
		Observer:         obs,
		Readings:         obs,
		LiveViews:        obs,
		Log:              log.Named("views"),
		JWTSecret:        cfg.Auth.JWTSecret,
		DetailInterval:   cfg.Poll.DetailInterval,
		OverviewInterval: cfg.Poll.OverviewInterval,
		FetchTimeout:     cfg.Poll.FetchTimeout,
		OCPPPort:         cfg.OCPP.Port,
		Clock:            clock,
	})
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithStreamGauge(obs),
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
	)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, server.WithCORS(apiHandler.InitRoutes(), cfg.CORS.AllowedOrigins), log)
	log.Infow("console started", "port", cfg.Port, "upstream", cfg.Upstream.BaseURL)

	waitForShutdown(cancel, srv, services, log)
	<-journalDone
}

// runPruner trims the poll journal on a fixed cadence until ctx ends.
func runPruner(ctx context.Context, journal *service.PollJournal, cfg config.Journal) {
	journal.Prune(ctx, cfg.Retention)
	t := time.NewTicker(cfg.PruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			journal.Prune(ctx, cfg.Retention)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop poll sessions, then the journal writer flushes what they reported
	if vm, ok := services.Views.(*service.ViewManager); ok {
		vm.Close()
	}
	cancel()
}
