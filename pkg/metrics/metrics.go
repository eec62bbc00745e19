package metrics

import "time"

// Collector receives ledger engine metrics.
// Implementations must be safe for concurrent use
type Collector interface {
	RecordOperation(operation string, success bool, duration time.Duration)
	RecordReadRetry(operation string)
	RecordCompensation(success bool)
	RecordTransaction(trxType string)
}

// NoOpCollector is used when metrics are not needed
type NoOpCollector struct{}

// RecordOperation does nothing
func (NoOpCollector) RecordOperation(operation string, success bool, duration time.Duration) {}

// RecordReadRetry does nothing
func (NoOpCollector) RecordReadRetry(operation string) {}

// RecordCompensation does nothing
func (NoOpCollector) RecordCompensation(success bool) {}

// RecordTransaction does nothing
func (NoOpCollector) RecordTransaction(trxType string) {}
