package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
)

// recordDriver is a stub database driver that records how transactions are
// opened. No statements ever execute; it exists to observe BeginTx options.
type recordDriver struct {
	begins    int
	isolation driver.IsolationLevel
	commits   int
	rollbacks int
}

func (d *recordDriver) Open(name string) (driver.Conn, error) { return &recordConn{d: d}, nil }

type recordConn struct{ d *recordDriver }

func (c *recordConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("no statements in this test")
}
func (c *recordConn) Close() error { return nil }

func (c *recordConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *recordConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.d.begins++
	c.d.isolation = opts.Isolation
	return recordTx{d: c.d}, nil
}

type recordTx struct{ d *recordDriver }

func (t recordTx) Commit() error   { t.d.commits++; return nil }
func (t recordTx) Rollback() error { t.d.rollbacks++; return nil }

var txDriver = &recordDriver{}

func init() { sql.Register("txrecorder", txDriver) }

func newRecordedStore(t *testing.T) (*Store, *recordDriver) {
	t.Helper()
	db, err := sql.Open("txrecorder", "")
	if err != nil {
		t.Fatalf("open stub driver: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	*txDriver = recordDriver{}
	return NewStore(db), txDriver
}

func TestWithTxSerializableIsolation(t *testing.T) {
	store, drv := newRecordedStore(t)

	called := false
	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		if txFromContext(ctx) == nil {
			t.Error("callback context carries no transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if !called {
		t.Fatal("callback never ran")
	}
	if drv.begins != 1 {
		t.Fatalf("begins = %d, want 1", drv.begins)
	}
	if want := driver.IsolationLevel(sql.LevelSerializable); drv.isolation != want {
		t.Fatalf("isolation = %d, want %d (serializable)", drv.isolation, want)
	}
	if drv.commits != 1 || drv.rollbacks != 0 {
		t.Fatalf("commits = %d rollbacks = %d, want 1 and 0", drv.commits, drv.rollbacks)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store, drv := newRecordedStore(t)

	boom := errors.New("boom")
	err := store.WithTx(context.Background(), func(ctx context.Context) error { return boom })
	if err != boom {
		t.Fatalf("err = %v, want the callback error unchanged", err)
	}
	if drv.rollbacks != 1 || drv.commits != 0 {
		t.Fatalf("rollbacks = %d commits = %d, want 1 and 0", drv.rollbacks, drv.commits)
	}
}

func TestWithTxNestedReusesTransaction(t *testing.T) {
	store, drv := newRecordedStore(t)

	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		return store.WithTx(ctx, func(ctx context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if drv.begins != 1 {
		t.Fatalf("begins = %d, want 1 (nested call must join the outer transaction)", drv.begins)
	}
	if drv.commits != 1 {
		t.Fatalf("commits = %d, want 1", drv.commits)
	}
}
