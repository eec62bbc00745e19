package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports ledger metrics to Prometheus
type Collector struct {
	operations         *prometheus.CounterVec
	operationErrors    *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	readRetries        *prometheus.CounterVec
	compensations      *prometheus.CounterVec
	transactionsStored *prometheus.CounterVec
}

// NewCollector creates a collector with metrics under the given namespace
func NewCollector(namespace string) *Collector {
	return &Collector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Total number of ledger engine operations",
			},
			[]string{"operation"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operation_errors_total",
				Help:      "Total number of failed ledger engine operations",
			},
			[]string{"operation"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger engine operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~3s
			},
			[]string{"operation"},
		),
		readRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_read_retries_total",
				Help:      "Total number of reads retried after the store was unavailable",
			},
			[]string{"operation"},
		),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_transfer_compensations_total",
				Help:      "Total number of compensating deletes of a transfer leg",
			},
			[]string{"status"},
		),
		transactionsStored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_transactions_recorded_total",
				Help:      "Total number of transactions recorded per type",
			},
			[]string{"type"},
		),
	}
}

// Register registers all metrics with the given registry
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.operations,
		c.operationErrors,
		c.operationLatency,
		c.readRetries,
		c.compensations,
		c.transactionsStored,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordOperation records an engine operation
func (c *Collector) RecordOperation(operation string, success bool, duration time.Duration) {
	c.operations.WithLabelValues(operation).Inc()
	if !success {
		c.operationErrors.WithLabelValues(operation).Inc()
	}
	c.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordReadRetry records a retried read
func (c *Collector) RecordReadRetry(operation string) {
	c.readRetries.WithLabelValues(operation).Inc()
}

// RecordCompensation records a compensating delete
func (c *Collector) RecordCompensation(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.compensations.WithLabelValues(status).Inc()
}

// RecordTransaction records a stored transaction
func (c *Collector) RecordTransaction(trxType string) {
	c.transactionsStored.WithLabelValues(trxType).Inc()
}
