package ledger

import (
	"strings"
	"time"
)

// Window is a time range to show transactions for
type Window string

// Supported windows
const (
	All     Window = "ALL"
	Weekly  Window = "WEEKLY"
	Monthly Window = "MONTHLY"
)

var windowSpans = map[Window]time.Duration{
	Weekly:  7 * 24 * time.Hour,
	Monthly: 30 * 24 * time.Hour,
}

// ParseWindow parses a window name, empty value means All
func ParseWindow(value string) (Window, error) {
	window := Window(strings.ToUpper(strings.TrimSpace(value)))
	switch window {
	case "":
		return All, nil
	case All, Weekly, Monthly:
		return window, nil
	}
	return "", &ValidationError{Field: "window", Reason: "must be one of ALL, WEEKLY, MONTHLY"}
}

// Filter keeps transactions created less than the window span ago.
// A record exactly at the span boundary is excluded. Order is preserved
func Filter(txs []Transaction, window Window, now time.Time) []Transaction {
	span, ok := windowSpans[window]
	if !ok {
		return txs
	}
	result := make([]Transaction, 0, len(txs))
	for _, trx := range txs {
		if now.Sub(trx.CreatedAt) < span {
			result = append(result, trx)
		}
	}
	return result
}
