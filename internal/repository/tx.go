package repository

import (
	"context"
	"database/sql"
)

type txKey struct{}

// executor is the subset of *sql.DB and *sql.Tx the repositories use.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and runs multi-step sequences inside a
// single transaction. The transaction travels in the context, so repository
// methods called from inside the callback automatically join it; nested
// WithTx calls reuse the outer transaction.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

// WithTx begins a serializable transaction, runs fn with the transaction
// bound to the context, and commits. Any error from fn rolls the transaction
// back and is returned unchanged.
//
// Serializable isolation is what makes the check-then-act sequences correct
// under concurrency: with MySQL's default REPEATABLE READ the guard SELECTs
// (active reservation per user, slot occupancy, completion flag) are
// non-locking snapshot reads, so two racing bookings could both pass the
// check and both insert. Under SERIALIZABLE those reads take shared locks
// and one of the two transactions fails instead.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// exec picks the context transaction when one is active, the pool otherwise.
func exec(ctx context.Context, db *sql.DB) executor {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
