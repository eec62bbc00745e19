package ledger

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrorKind is a stable name of an error category
type ErrorKind string

// Error kinds
const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindEditWindowExpired ErrorKind = "edit_window_expired"
	KindTransferFailed    ErrorKind = "transfer_failed"
	KindStoreUnavailable  ErrorKind = "store_unavailable"
)

// KindOf returns a kind of a ledger error found in the chain
func KindOf(err error) (ErrorKind, bool) {
	var kinded interface{ Kind() ErrorKind }
	if errors.As(err, &kinded) {
		return kinded.Kind(), true
	}
	return "", false
}

// ValidationError is returned when input violates entity rules
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %v: %v", e.Field, e.Reason)
}

// Kind of the error
func (e *ValidationError) Kind() ErrorKind {
	return KindValidation
}

// NotFoundError is returned when the transaction does not exist for the owner
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Transaction %v not found", e.ID)
}

// Kind of the error
func (e *NotFoundError) Kind() ErrorKind {
	return KindNotFound
}

// EditWindowExpiredError is returned when updating a locked transaction
type EditWindowExpiredError struct {
	ID        string
	CreatedAt time.Time
	LockedAt  time.Time
}

func (e *EditWindowExpiredError) Error() string {
	return fmt.Sprintf("Transaction %v is locked since %v", e.ID, e.LockedAt.Format(time.RFC3339))
}

// Kind of the error
func (e *EditWindowExpiredError) Kind() ErrorKind {
	return KindEditWindowExpired
}

// TransferFailedError is returned when a transfer pair could not be written
type TransferFailedError struct {
	Cause error
}

func (e *TransferFailedError) Error() string {
	return "Failed to record transfer: " + e.Cause.Error()
}

// Kind of the error
func (e *TransferFailedError) Kind() ErrorKind {
	return KindTransferFailed
}

// Unwrap returns the cause
func (e *TransferFailedError) Unwrap() error {
	return e.Cause
}

// StoreUnavailableError is returned when the store is not reachable
type StoreUnavailableError struct {
	Op    string
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("Store unavailable (%v): %v", e.Op, e.Cause)
}

// Kind of the error
func (e *StoreUnavailableError) Kind() ErrorKind {
	return KindStoreUnavailable
}

// Unwrap returns the cause
func (e *StoreUnavailableError) Unwrap() error {
	return e.Cause
}
