package db

import (
	"context"
	"database/sql/driver"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// permanentError marks a failure that must not be retried even if its cause looks transient,
// e.g. a scan that already handed rows to the caller.
type permanentError struct {
	err error
}

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// isTransient reports whether err is a connection-level failure worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var p permanentError
	if errors.As(err, &p) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08: connection exception, 57P03: cannot_connect_now
		return pqErr.Code.Class() == "08" || pqErr.Code == "57P03"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// isRetryableInsert reports whether a failed INSERT certainly did not reach
// the table. A dropped connection after the statement was sent may have
// committed it, so only errors raised before execution qualify.
func isRetryableInsert(err error) bool {
	var p permanentError
	if err == nil || errors.As(err, &p) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
