package app

import (
	"database/sql"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/money-manager/config"
	"github.com/evgeny-myasishchev/money-manager/pkg/dal"
	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/metrics"
	ledgerprom "github.com/evgeny-myasishchev/money-manager/pkg/metrics/prometheus"
	"github.com/evgeny-myasishchev/money-manager/pkg/version"
)

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

// BootstrapServices setup di container with all app services
func BootstrapServices(appCfg *config.AppConfig) Injector {
	c := dig.New()
	provide := func(constructor interface{}) {
		if err := c.Provide(constructor); err != nil {
			panic(err)
		}
	}

	provide(func() (*sql.DB, error) {
		db, err := sql.Open(appCfg.Storage.Driver.Value(), appCfg.Storage.DSN.Value())
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer, in-memory db also lives in a single connection
		if appCfg.Storage.Driver.Value() == "sqlite3" {
			db.SetMaxOpenConns(1)
		}
		return db, nil
	})

	provide(func(db *sql.DB) (dal.SQLStorage, error) {
		return dal.NewSQLStorage(dal.WithSQLDb(db))
	})

	provide(func(storage dal.SQLStorage) dal.Storage {
		return storage
	})

	provide(func() (*prometheus.Registry, error) {
		registry := prometheus.NewRegistry()
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, err
		}
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, err
		}
		return registry, nil
	})

	provide(func(registry *prometheus.Registry) (metrics.Collector, error) {
		collector := ledgerprom.NewCollector(strings.ReplaceAll(version.AppName, "-", "_"))
		if err := collector.Register(registry); err != nil {
			return nil, err
		}
		return collector, nil
	})

	provide(func(storage dal.Storage, collector metrics.Collector) ledger.Engine {
		return ledger.NewEngine(
			ledger.WithStorage(storage),
			ledger.WithMetrics(collector),
			ledger.WithReadRetries(appCfg.Ledger.ReadRetries.Value()),
			ledger.WithRetryDelay(appCfg.Ledger.RetryDelay.Value()),
		)
	})

	return func(function interface{}) error {
		return c.Invoke(function)
	}
}
