package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evgeny-myasishchev/money-manager/pkg/api"
	"github.com/evgeny-myasishchev/money-manager/pkg/app"
	"github.com/evgeny-myasishchev/money-manager/pkg/dal"
	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/money-manager/pkg/version"
)

var logger = diag.CreateLogger()

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting %v %v on %v", version.AppName, version.Version, srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info(nil, "Shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "Failed to shutdown gracefully")
	}
	return nil
}

func main() {
	ctx := context.Background()

	appCfg, err := app.LoadConfig()
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
		setup.SetLogMode(appCfg.Log.Mode.Value())
	})

	injector := app.BootstrapServices(appCfg)

	if err := injector(func(storage dal.Storage, engine ledger.Engine, registry *prometheus.Registry) error {
		if appCfg.Storage.MigrateOnStart.Value() {
			if err := storage.Setup(ctx); err != nil {
				return err
			}
		}
		srv := router.NewServer(appCfg.Server.Port.Value(), func(r router.Router) {
			api.SetupRoutes(r, api.WithEngine(engine), api.WithGatherer(registry))
		})
		return serve(ctx, srv, appCfg.Server.ShutdownTimeout.Value())
	}); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error(ctx, "Ledger server failed")
		os.Exit(1)
	}
}
