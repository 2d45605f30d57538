package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/RezaEskandarii/jobboard/internal/lock"
	"github.com/RezaEskandarii/jobboard/internal/logger"
)

//go:embed migrations
var migrationFiles embed.FS

const baseDir = "migrations"

// migrate runs every schema script for the dialect in file-name order.
// The scripts only use IF NOT EXISTS forms, so running them on every start is safe.
// On PostgreSQL an advisory lock keeps concurrently starting instances from
// migrating at the same time; the scripts run on the connection holding it.
func migrate(ctx context.Context, pool *sql.DB, dialect Dialect, log *zap.SugaredLogger) error {
	scripts, err := readSQLScripts(dialect)
	if err != nil {
		return err
	}

	conn, err := pool.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "reserve migration connection")
	}
	defer conn.Close()

	locker := lockManagerFor(dialect, conn)
	if err := locker.Acquire(ctx, lock.MigrationLock); err != nil {
		return err
	}
	defer func() {
		if err := locker.Release(lock.MigrationLock); err != nil {
			log.Warnw("Dropping migration connection", logger.FieldError, err)
			// a bad connection is closed instead of going back to the pool with the lock held
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
	}()

	for _, script := range scripts {
		log.Debugw("Running migration", logger.FieldDialect, dialect.String(), "name", script.name)
		if _, err := conn.ExecContext(ctx, script.body); err != nil {
			return errors.Wrapf(err, "migration %s", script.name)
		}
	}
	log.Infow("Schema ready", logger.FieldDialect, dialect.String(), "scripts", len(scripts))
	return nil
}

func lockManagerFor(dialect Dialect, conn *sql.Conn) lock.DistributedLockManager {
	if dialect == Postgres {
		return lock.NewPostgresDistributedLockManager(conn)
	}
	return lock.NoopLockManager{}
}

type sqlScript struct {
	name string
	body string
}

func readSQLScripts(dialect Dialect) ([]sqlScript, error) {
	dir := path.Join(baseDir, dialect.String())
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read migrations for %s", dialect)
	}

	var scripts []sqlScript
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(migrationFiles, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read migration %s", entry.Name())
		}

		scripts = append(scripts, sqlScript{name: entry.Name(), body: string(content)})
	}

	return scripts, nil
}
