package dal

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// ErrNotFound is returned when a row does not exist for the given owner
var ErrNotFound = errors.New("Not found")

// UnavailableError indicates the store could not serve a request
// at the moment (busy, locked or closed database). Safe to retry reads.
type UnavailableError struct {
	Op    string
	Cause error
}

func (e *UnavailableError) Error() string {
	return "Storage unavailable (" + e.Op + "): " + e.Cause.Error()
}

// Unwrap returns the underlying driver error
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// TransactionDTO is a DTO to store ledger transactions
type TransactionDTO struct {
	ID          string
	Owner       string
	Type        string
	Amount      string
	Description string
	Category    string
	Division    string
	ToDivision  string
	TransferID  string
	Leg         string
	CreatedAt   time.Time
}

//go:generate mockgen -destination=mocks/storage.go -package=mocks github.com/evgeny-myasishchev/money-manager/pkg/dal Storage

// Storage is a persistance layer
type Storage interface {
	Setup(ctx context.Context) error
	InsertTransaction(ctx context.Context, trx *TransactionDTO) error
	GetTransaction(ctx context.Context, owner, id string) (*TransactionDTO, error)
	UpdateTransaction(ctx context.Context, trx *TransactionDTO) error
	DeleteTransaction(ctx context.Context, owner, id string) error

	// ListTransactionsByOwner returns all transactions of the owner
	// ordered by created_at and then id
	ListTransactionsByOwner(ctx context.Context, owner string) ([]TransactionDTO, error)
}

// TransferStorage is implemented by stores that can write
// both legs of a transfer atomically
type TransferStorage interface {
	InsertTransfer(ctx context.Context, debit, credit *TransactionDTO) error
	DeleteTransfer(ctx context.Context, owner, transferID string) error
}
