package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/money-manager/pkg/dal"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/money-manager/pkg/metrics"
)

var logger = diag.CreateLogger()

const (
	defaultReadRetries = 3
	defaultRetryDelay  = 50 * time.Millisecond
)

// Engine validates and records transactions of an owner
type Engine interface {
	Create(ctx context.Context, owner string, input Input) (*Transaction, error)
	CreateTransfer(ctx context.Context, owner string, input Input) (*Transfer, error)
	Update(ctx context.Context, owner string, id string, patch Patch) (*Transaction, error)

	// Delete is allowed at any time. Deleting a leg of a transfer deletes both legs
	Delete(ctx context.Context, owner string, id string) error

	ListByOwner(ctx context.Context, owner string, opts ...ListOpt) ([]Transaction, error)
}

type listCfg struct {
	division string
}

// ListOpt is an option of ListByOwner
type ListOpt func(cfg *listCfg)

// WithDivision keeps transactions of the division. Transfers into
// the division are kept as well
func WithDivision(division string) ListOpt {
	return func(cfg *listCfg) {
		cfg.division = division
	}
}

type engine struct {
	storage     dal.Storage
	now         func() time.Time
	metrics     metrics.Collector
	readRetries int
	retryDelay  time.Duration
}

func toDTO(trx Transaction) *dal.TransactionDTO {
	return &dal.TransactionDTO{
		ID:          trx.ID,
		Owner:       trx.Owner,
		Type:        string(trx.Type),
		Amount:      trx.Amount.String(),
		Description: trx.Description,
		Category:    trx.Category,
		Division:    trx.Division,
		ToDivision:  trx.ToDivision,
		TransferID:  trx.TransferID,
		Leg:         string(trx.Leg),
		CreatedAt:   trx.CreatedAt,
	}
}

func fromDTO(dto *dal.TransactionDTO) (Transaction, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Transaction{}, errors.Wrapf(err, "Failed to parse amount of transaction %v", dto.ID)
	}
	return Transaction{
		ID:          dto.ID,
		Owner:       dto.Owner,
		Type:        Type(dto.Type),
		Amount:      amount,
		Description: dto.Description,
		Category:    dto.Category,
		Division:    dto.Division,
		ToDivision:  dto.ToDivision,
		TransferID:  dto.TransferID,
		Leg:         Leg(dto.Leg),
		CreatedAt:   dto.CreatedAt.UTC(),
	}, nil
}

func fromStoreErr(op string, id string, err error) error {
	if errors.Cause(err) == dal.ErrNotFound {
		return &NotFoundError{ID: id}
	}
	var unavailable *dal.UnavailableError
	if errors.As(err, &unavailable) {
		return &StoreUnavailableError{Op: op, Cause: err}
	}
	return errors.Wrapf(err, "Failed to %v", op)
}

func requireOwner(owner string) error {
	if owner == "" {
		return &ValidationError{Field: "owner", Reason: "is required"}
	}
	return nil
}

func (e *engine) record(op string, started time.Time, err *error) {
	e.metrics.RecordOperation(op, *err == nil, time.Since(started))
}

// read calls fn again while the store reports it is unavailable
func (e *engine) read(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		var unavailable *dal.UnavailableError
		if err == nil || !errors.As(err, &unavailable) || attempt >= e.readRetries {
			return err
		}
		e.metrics.RecordReadRetry(op)
		logger.WithError(err).Warn(ctx, "Store unavailable on %v, retrying (attempt %v of %v)", op, attempt, e.readRetries)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.retryDelay * time.Duration(attempt)):
		}
	}
}

func (e *engine) get(ctx context.Context, owner string, id string) (Transaction, error) {
	var dto *dal.TransactionDTO
	if err := e.read(ctx, "get transaction", func() (err error) {
		dto, err = e.storage.GetTransaction(ctx, owner, id)
		return err
	}); err != nil {
		return Transaction{}, fromStoreErr("get transaction", id, err)
	}
	return fromDTO(dto)
}

func (e *engine) Create(ctx context.Context, owner string, input Input) (result *Transaction, err error) {
	defer e.record("create", time.Now(), &err)
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	trx, err := ValidateForCreate(input)
	if err != nil {
		return nil, err
	}
	if trx.IsTransfer() {
		return nil, &ValidationError{Field: "type", Reason: "transfers must be created with CreateTransfer"}
	}
	trx.ID = uuid.NewV4().String()
	trx.Owner = owner
	trx.CreatedAt = e.now().UTC()

	logger.Debug(ctx, "Recording %v transaction %v", trx.Type, trx.ID)
	if err := e.storage.InsertTransaction(ctx, toDTO(trx)); err != nil {
		return nil, fromStoreErr("insert transaction", trx.ID, err)
	}
	e.metrics.RecordTransaction(string(trx.Type))
	return &trx, nil
}

func (e *engine) CreateTransfer(ctx context.Context, owner string, input Input) (result *Transfer, err error) {
	defer e.record("create transfer", time.Now(), &err)
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	trx, err := ValidateForCreate(input)
	if err != nil {
		return nil, err
	}
	if !trx.IsTransfer() {
		return nil, &ValidationError{Field: "type", Reason: "must be TRANSFER"}
	}
	trx.Owner = owner
	trx.CreatedAt = e.now().UTC()
	trx.TransferID = uuid.NewV4().String()

	debit, credit := trx, trx
	debit.ID, debit.Leg = uuid.NewV4().String(), LegOut
	credit.ID, credit.Leg = uuid.NewV4().String(), LegIn

	logger.Debug(ctx, "Recording transfer %v: %v -> %v", trx.TransferID, trx.Division, trx.ToDivision)
	if transferStorage, ok := e.storage.(dal.TransferStorage); ok {
		if err := transferStorage.InsertTransfer(ctx, toDTO(debit), toDTO(credit)); err != nil {
			return nil, &TransferFailedError{Cause: fromStoreErr("insert transfer", trx.TransferID, err)}
		}
	} else if err := e.insertLegs(ctx, debit, credit); err != nil {
		return nil, &TransferFailedError{Cause: err}
	}
	e.metrics.RecordTransaction(string(TypeTransfer))
	return &Transfer{Debit: debit, Credit: credit}, nil
}

// insertLegs writes legs one by one for stores without transactions.
// The debit is removed if the credit could not be written
func (e *engine) insertLegs(ctx context.Context, debit, credit Transaction) error {
	if err := e.storage.InsertTransaction(ctx, toDTO(debit)); err != nil {
		return fromStoreErr("insert transfer debit", debit.ID, err)
	}
	if err := e.storage.InsertTransaction(ctx, toDTO(credit)); err != nil {
		compErr := e.storage.DeleteTransaction(ctx, debit.Owner, debit.ID)
		e.metrics.RecordCompensation(compErr == nil)
		if compErr != nil {
			logger.WithError(compErr).
				WithData(diag.MsgData{"transferID": debit.TransferID, "debitID": debit.ID}).
				Error(ctx, "Failed to remove debit of incomplete transfer")
		}
		return fromStoreErr("insert transfer credit", credit.ID, err)
	}
	return nil
}

func (e *engine) Update(ctx context.Context, owner string, id string, patch Patch) (result *Transaction, err error) {
	defer e.record("update", time.Now(), &err)
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	existing, err := e.get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if EditStatusOf(existing, e.now()) == Locked {
		return nil, &EditWindowExpiredError{
			ID:        existing.ID,
			CreatedAt: existing.CreatedAt,
			LockedAt:  existing.LockedAt(),
		}
	}
	updated, err := ValidateForUpdate(existing, patch)
	if err != nil {
		return nil, err
	}
	if err := e.storage.UpdateTransaction(ctx, toDTO(updated)); err != nil {
		return nil, fromStoreErr("update transaction", id, err)
	}
	return &updated, nil
}

func (e *engine) Delete(ctx context.Context, owner string, id string) (err error) {
	defer e.record("delete", time.Now(), &err)
	if err := requireOwner(owner); err != nil {
		return err
	}
	existing, err := e.get(ctx, owner, id)
	if err != nil {
		return err
	}
	if !existing.IsTransfer() {
		if err := e.storage.DeleteTransaction(ctx, owner, id); err != nil {
			return fromStoreErr("delete transaction", id, err)
		}
		return nil
	}

	logger.Debug(ctx, "Deleting transfer %v", existing.TransferID)
	if transferStorage, ok := e.storage.(dal.TransferStorage); ok {
		if err := transferStorage.DeleteTransfer(ctx, owner, existing.TransferID); err != nil {
			return fromStoreErr("delete transfer", id, err)
		}
		return nil
	}
	all, err := e.list(ctx, owner)
	if err != nil {
		return err
	}
	legs := make([]Transaction, 0, 2)
	for _, leg := range all {
		if leg.TransferID == existing.TransferID {
			legs = append(legs, leg)
		}
	}
	return e.deleteLegs(ctx, legs)
}

// deleteLegs removes legs one by one for stores without transactions.
// Legs already removed are written back if a later delete fails
func (e *engine) deleteLegs(ctx context.Context, legs []Transaction) error {
	for i, leg := range legs {
		err := e.storage.DeleteTransaction(ctx, leg.Owner, leg.ID)
		if err == nil {
			continue
		}
		if i > 0 {
			var compErr error
			for _, deleted := range legs[:i] {
				if insertErr := e.storage.InsertTransaction(ctx, toDTO(deleted)); insertErr != nil && compErr == nil {
					compErr = insertErr
				}
			}
			e.metrics.RecordCompensation(compErr == nil)
			if compErr != nil {
				logger.WithError(compErr).
					WithData(diag.MsgData{"transferID": leg.TransferID, "legID": leg.ID}).
					Error(ctx, "Failed to restore legs of partially deleted transfer")
			}
		}
		return fromStoreErr("delete transfer", leg.ID, err)
	}
	return nil
}

func (e *engine) list(ctx context.Context, owner string) ([]Transaction, error) {
	var dtos []dal.TransactionDTO
	if err := e.read(ctx, "list transactions", func() (err error) {
		dtos, err = e.storage.ListTransactionsByOwner(ctx, owner)
		return err
	}); err != nil {
		return nil, fromStoreErr("list transactions", "", err)
	}
	result := make([]Transaction, 0, len(dtos))
	for i := range dtos {
		trx, err := fromDTO(&dtos[i])
		if err != nil {
			return nil, err
		}
		result = append(result, trx)
	}
	return result, nil
}

func (e *engine) ListByOwner(ctx context.Context, owner string, opts ...ListOpt) (result []Transaction, err error) {
	defer e.record("list", time.Now(), &err)
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	cfg := listCfg{}
	for _, opt := range opts {
		opt(&cfg)
	}
	all, err := e.list(ctx, owner)
	if err != nil || cfg.division == "" {
		return all, err
	}
	result = make([]Transaction, 0, len(all))
	for _, trx := range all {
		if trx.Division == cfg.division || (trx.IsTransfer() && trx.ToDivision == cfg.division) {
			result = append(result, trx)
		}
	}
	return result, nil
}

// EngineOpt is an option of the engine
type EngineOpt func(e *engine)

// WithStorage sets a storage to persist transactions
func WithStorage(storage dal.Storage) EngineOpt {
	return func(e *engine) {
		e.storage = storage
	}
}

// WithNow sets a clock. Used to assign createdAt and check the edit window
func WithNow(now func() time.Time) EngineOpt {
	return func(e *engine) {
		e.now = now
	}
}

// WithMetrics sets a metrics collector
func WithMetrics(collector metrics.Collector) EngineOpt {
	return func(e *engine) {
		e.metrics = collector
	}
}

// WithReadRetries sets a total number of attempts of a read
// when the store is unavailable
func WithReadRetries(attempts int) EngineOpt {
	return func(e *engine) {
		if attempts < 1 {
			attempts = 1
		}
		e.readRetries = attempts
	}
}

// WithRetryDelay sets a delay before the first retry, next ones wait longer
func WithRetryDelay(delay time.Duration) EngineOpt {
	return func(e *engine) {
		e.retryDelay = delay
	}
}

// NewEngine returns an instance of the ledger engine
func NewEngine(opts ...EngineOpt) Engine {
	e := &engine{
		now:         time.Now,
		metrics:     metrics.NoOpCollector{},
		readRetries: defaultReadRetries,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return Engine(e)
}
