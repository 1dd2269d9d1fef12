package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrTransactionActive is returned when Run is called while another
// transaction of the same context is still open.
var ErrTransactionActive = errors.New("transaction already active")

// Querier is the subset of *sql.DB and *sql.Tx used by components.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TransactionContext tracks the transaction a caller has opened so that every
// component sharing the context reads and writes through it.
//
// It follows the single-writer model: one goroutine drives it at a time and it
// performs no locking.
type TransactionContext struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionContext wraps db. Most callers use Store.Transactions instead.
func NewTransactionContext(db *sql.DB) *TransactionContext {
	return &TransactionContext{db: db}
}

// Querier returns the open transaction, or the database itself when no
// transaction is active (each statement then commits on its own).
func (tc *TransactionContext) Querier() Querier {
	if tc.tx != nil {
		return tc.tx
	}
	return tc.db
}

// InTransaction reports whether Run is currently executing.
func (tc *TransactionContext) InTransaction() bool {
	return tc.tx != nil
}

// Run executes fn inside a new transaction. The transaction commits when fn
// returns nil and rolls back otherwise, including when fn panics.
func (tc *TransactionContext) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if tc.tx != nil {
		return ErrTransactionActive
	}

	tx, err := tc.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	tc.tx = tx
	defer func() {
		tc.tx = nil
		_ = tx.Rollback() // No-op if committed
	}()

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
