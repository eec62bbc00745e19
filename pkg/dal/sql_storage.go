package dal

import (
	"context"
	"database/sql"
	"embed"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type sqlStorage struct {
	db *sql.DB
}

func isUnavailable(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed")
}

func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return &UnavailableError{Op: op, Cause: err}
	}
	return errors.Wrapf(err, "Failed to %v", op)
}

func (s *sqlStorage) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup SQL storage")
	driver, err := migratesqlite3.WithInstance(s.db, &migratesqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "Failed to create migrate driver")
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "Failed to open migrations")
	}

	// m.Close is not called since it would close the shared db
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "Failed to create migrate instance")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "Failed to setup storage")
	}
	version, _, _ := m.Version()
	logger.Debug(ctx, "Storage schema version: %v", version)
	return nil
}

func insertTransaction(ctx context.Context, db execer, trx *TransactionDTO) error {
	_, err := db.ExecContext(ctx, `
	INSERT INTO transactions(
		id,
		owner,
		type,
		amount,
		description,
		category,
		division,
		to_division,
		transfer_id,
		leg,
		created_at
	)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		trx.ID,
		trx.Owner,
		trx.Type,
		trx.Amount,
		trx.Description,
		trx.Category,
		trx.Division,
		trx.ToDivision,
		trx.TransferID,
		trx.Leg,
		trx.CreatedAt.UTC(),
	)
	return err
}

func (s *sqlStorage) InsertTransaction(ctx context.Context, trx *TransactionDTO) error {
	if err := insertTransaction(ctx, s.db, trx); err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

func (s *sqlStorage) InsertTransfer(ctx context.Context, debit, credit *TransactionDTO) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin transfer", err)
	}
	for _, leg := range []*TransactionDTO{debit, credit} {
		if err := insertTransaction(ctx, tx, leg); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.WithError(rbErr).Warn(ctx, "Failed to rollback transfer %v", debit.TransferID)
			}
			return wrapErr("insert transfer", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit transfer", err)
	}
	return nil
}

const selectTransactions = `
	SELECT
		id, owner, type, amount, description, category,
		division, to_division, transfer_id, leg, created_at
	FROM transactions`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (*TransactionDTO, error) {
	result := &TransactionDTO{}
	if err := row.Scan(
		&result.ID,
		&result.Owner,
		&result.Type,
		&result.Amount,
		&result.Description,
		&result.Category,
		&result.Division,
		&result.ToDivision,
		&result.TransferID,
		&result.Leg,
		&result.CreatedAt,
	); err != nil {
		return nil, err
	}
	result.CreatedAt = result.CreatedAt.UTC()
	return result, nil
}

func (s *sqlStorage) GetTransaction(ctx context.Context, owner, id string) (*TransactionDTO, error) {
	row := s.db.QueryRowContext(ctx, selectTransactions+`
	WHERE owner = $1 AND id = $2`, owner, id)
	result, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get transaction", err)
	}
	return result, nil
}

func (s *sqlStorage) UpdateTransaction(ctx context.Context, trx *TransactionDTO) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE transactions
	SET type=$1, amount=$2, description=$3, category=$4, division=$5, to_division=$6
	WHERE owner = $7 AND id = $8
	`, trx.Type, trx.Amount, trx.Description, trx.Category, trx.Division, trx.ToDivision, trx.Owner, trx.ID)
	if err != nil {
		return wrapErr("update transaction", err)
	}
	return checkAffected("update transaction", res)
}

func checkAffected(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStorage) DeleteTransaction(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return wrapErr("delete transaction", err)
	}
	return checkAffected("delete transaction", res)
}

func (s *sqlStorage) DeleteTransfer(ctx context.Context, owner, transferID string) error {
	if transferID == "" {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner = $1 AND transfer_id = $2`, owner, transferID)
	if err != nil {
		return wrapErr("delete transfer", err)
	}
	return checkAffected("delete transfer", res)
}

func (s *sqlStorage) ListTransactionsByOwner(ctx context.Context, owner string) ([]TransactionDTO, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions+`
	WHERE owner = $1
	ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}
	defer rows.Close()

	result := []TransactionDTO{}
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, wrapErr("list transactions", err)
		}
		result = append(result, *trx)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list transactions", err)
	}
	return result, nil
}

// SQLStorageOpt is an option of SQL storage
type SQLStorageOpt func(s *sqlStorage)

// WithSQLDb will set an explicit db instance for a storage
func WithSQLDb(db *sql.DB) SQLStorageOpt {
	return func(s *sqlStorage) {
		s.db = db
	}
}

// SQLStorage is a storage that can write transfers atomically
type SQLStorage interface {
	Storage
	TransferStorage
}

// NewSQLStorage returns an instance of a sql storage
func NewSQLStorage(opts ...SQLStorageOpt) (SQLStorage, error) {
	storage := &sqlStorage{}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.db == nil {
		return nil, errors.New("SQL db is required")
	}
	return storage, nil
}
