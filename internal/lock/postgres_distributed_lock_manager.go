package lock

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

const releaseTimeout = 5 * time.Second

// PostgresDistributedLockManager uses session level advisory locks. They belong
// to the connection that took them, so hand it a *sql.Conn rather than a pool.
type PostgresDistributedLockManager struct {
	db Execer
}

func NewPostgresDistributedLockManager(db Execer) *PostgresDistributedLockManager {
	return &PostgresDistributedLockManager{
		db: db,
	}
}

// Acquire blocks until the lock is granted or ctx is done.
func (l *PostgresDistributedLockManager) Acquire(ctx context.Context, lockID int) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockID)
	if err != nil {
		return errors.Wrap(err, "failed to acquire lock")
	}

	return nil
}

func (l *PostgresDistributedLockManager) Release(lockID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockID)
	if err != nil {
		return errors.Wrap(err, "failed to release lock")
	}

	return nil
}
