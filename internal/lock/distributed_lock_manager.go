package lock

import (
	"context"
	"database/sql"
)

// MigrationLock serializes schema migrations between instances sharing a database.
const MigrationLock = 7310

type DistributedLockManager interface {
	Acquire(ctx context.Context, lockID int) error
	Release(lockID int) error
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NoopLockManager is used where the backend already serializes writers, as SQLite does.
type NoopLockManager struct{}

func (NoopLockManager) Acquire(context.Context, int) error { return nil }
func (NoopLockManager) Release(int) error                  { return nil }
