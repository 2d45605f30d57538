package lock

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresDistributedLockManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mgr := NewPostgresDistributedLockManager(db)
	require.NotNil(t, mgr)
}

func TestPostgresDistributedLockManager_Acquire(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mgr := NewPostgresDistributedLockManager(db)

	mock.ExpectExec("SELECT pg_advisory_lock").
		WithArgs(MigrationLock).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = mgr.Acquire(context.Background(), MigrationLock)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDistributedLockManager_Acquire_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mgr := NewPostgresDistributedLockManager(db)

	mock.ExpectExec("SELECT pg_advisory_lock").
		WithArgs(42).
		WillReturnError(sql.ErrConnDone)

	err = mgr.Acquire(context.Background(), 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire lock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDistributedLockManager_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mgr := NewPostgresDistributedLockManager(db)

	mock.ExpectExec("SELECT pg_advisory_unlock").
		WithArgs(MigrationLock).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = mgr.Release(MigrationLock)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDistributedLockManager_Release_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mgr := NewPostgresDistributedLockManager(db)

	mock.ExpectExec("SELECT pg_advisory_unlock").
		WithArgs(99).
		WillReturnError(sql.ErrConnDone)

	err = mgr.Release(99)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to release lock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDistributedLockManager_OnDedicatedConn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(MigrationLock).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(MigrationLock).WillReturnResult(sqlmock.NewResult(0, 0))

	mgr := NewPostgresDistributedLockManager(conn)
	require.NoError(t, mgr.Acquire(ctx, MigrationLock))
	_, err = conn.ExecContext(ctx, "CREATE TABLE t (id int)")
	require.NoError(t, err)
	require.NoError(t, mgr.Release(MigrationLock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopLockManager(t *testing.T) {
	var mgr DistributedLockManager = NoopLockManager{}
	assert.NoError(t, mgr.Acquire(context.Background(), MigrationLock))
	assert.NoError(t, mgr.Release(MigrationLock))
}
