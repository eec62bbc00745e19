package memory

import (
	"sync"
	"time"
)

// OperationStats holds counts of a single engine operation
type OperationStats struct {
	Calls    int64
	Failures int64
	Retries  int64
}

// Collector keeps metrics in memory, mostly for tests
type Collector struct {
	mu sync.RWMutex

	operations    map[string]*OperationStats
	transactions  map[string]int64
	compensations map[bool]int64
}

// NewCollector creates a new in-memory collector
func NewCollector() *Collector {
	return &Collector{
		operations:    map[string]*OperationStats{},
		transactions:  map[string]int64{},
		compensations: map[bool]int64{},
	}
}

func (c *Collector) operation(name string) *OperationStats {
	stats, ok := c.operations[name]
	if !ok {
		stats = &OperationStats{}
		c.operations[name] = stats
	}
	return stats
}

// RecordOperation counts an operation call
func (c *Collector) RecordOperation(operation string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.operation(operation)
	stats.Calls++
	if !success {
		stats.Failures++
	}
}

// RecordReadRetry counts a retried read
func (c *Collector) RecordReadRetry(operation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operation(operation).Retries++
}

// RecordCompensation counts a compensating delete of a transfer leg
func (c *Collector) RecordCompensation(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compensations[success]++
}

// RecordTransaction counts a written record by type
func (c *Collector) RecordTransaction(trxType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions[trxType]++
}

// Operation returns a copy of stats of the operation
func (c *Collector) Operation(name string) OperationStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if stats, ok := c.operations[name]; ok {
		return *stats
	}
	return OperationStats{}
}

// Transactions returns number of records written of the given type
func (c *Collector) Transactions(trxType string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transactions[trxType]
}

// Compensations returns number of compensations with the given outcome
func (c *Collector) Compensations(success bool) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.compensations[success]
}
