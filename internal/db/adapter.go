package db

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/RezaEskandarii/jobboard/custom_errors"
	"github.com/RezaEskandarii/jobboard/internal/logger"
)

// RowScanner is the subset of *sql.Rows handed to scan callbacks.
type RowScanner interface {
	Scan(dest ...any) error
}

// Result describes the outcome of an INSERT, UPDATE or DELETE.
type Result struct {
	InsertedID    int64
	HasInsertedID bool
	RowsAffected  int64
}

// Adapter hides which relational backend is in use. Statements are written
// with numbered placeholders ($1, $2, ...) and are rewritten for SQLite.
//
// The connection pool is opened, pinged and migrated lazily on first use.
// A failed initialization is not remembered: the next call tries again.
type Adapter struct {
	cfg    Config
	logger *zap.SugaredLogger
	open   func(Config) (*sql.DB, error)

	mu    sync.Mutex
	db    *sql.DB
	ready bool
}

// New creates an adapter for cfg. No connection is made until Init or the first statement.
func New(cfg Config, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{
		cfg:    withDefaults(cfg),
		logger: logger,
		open:   openDB,
	}
}

// NewWithDB wraps an already opened pool whose schema is managed by the caller.
// Useful for testing.
func NewWithDB(db *sql.DB, cfg Config, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{
		cfg:    withDefaults(cfg),
		logger: logger,
		open: func(Config) (*sql.DB, error) {
			return nil, errors.New("injected connection has been closed")
		},
		db:    db,
		ready: true,
	}
}

func withDefaults(cfg Config) Config {
	if cfg.StatementTimeout < 0 {
		cfg.StatementTimeout = 0
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	return cfg
}

func openDB(cfg Config) (*sql.DB, error) {
	name := cfg.Dialect.driverName()
	if name == "" {
		return nil, errors.Newf("unsupported dialect: %v", cfg.Dialect)
	}
	db, err := sql.Open(name, cfg.dataSourceName())
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Dialect)
	}
	if cfg.Dialect == Postgres {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}
	return db, nil
}

// Dialect returns the backend this adapter talks to.
func (a *Adapter) Dialect() Dialect {
	return a.cfg.Dialect
}

// Init connects, verifies the connection and creates the schema. It is safe to
// call repeatedly; after the first success it returns immediately.
func (a *Adapter) Init(ctx context.Context) error {
	_, err := a.handle(ctx)
	return err
}

// Migrate runs the schema scripts against the current connection. When the
// adapter was not yet connected the scripts run once, as part of connecting.
func (a *Adapter) Migrate(ctx context.Context) error {
	db, connected, err := a.connect(ctx)
	if err != nil {
		return err
	}
	if connected {
		return nil
	}
	if err := migrate(ctx, db, a.cfg.Dialect, a.logger); err != nil {
		return custom_errors.NewStoreError("migrate", err)
	}
	return nil
}

// Ping checks the backend is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	db, err := a.handle(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.statementContext(ctx)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return custom_errors.NewStoreError("ping", errors.WithStack(err))
	}
	return nil
}

// Close releases the pool. A later call reconnects from scratch.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ready = false
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *Adapter) handle(ctx context.Context) (*sql.DB, error) {
	db, _, err := a.connect(ctx)
	return db, err
}

// connect returns the pool, opening and migrating it first if needed.
// connected reports whether this call did so.
func (a *Adapter) connect(ctx context.Context) (db *sql.DB, connected bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready && a.db != nil {
		return a.db, false, nil
	}

	a.logger.Infow("Connecting to database", logger.FieldDialect, a.cfg.Dialect.String())
	db, err = a.open(a.cfg)
	if err != nil {
		return nil, false, custom_errors.NewStoreError("open", err)
	}

	pingCtx, cancel := a.statementContext(ctx)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		_ = db.Close()
		a.logger.Errorw("Database unreachable", logger.FieldDialect, a.cfg.Dialect.String(), logger.FieldError, err)
		return nil, false, custom_errors.NewStoreError("ping", errors.WithStack(err))
	}

	if err := migrate(ctx, db, a.cfg.Dialect, a.logger); err != nil {
		_ = db.Close()
		a.logger.Errorw("Schema initialization failed", logger.FieldDialect, a.cfg.Dialect.String(), logger.FieldError, err)
		return nil, false, custom_errors.NewStoreError("migrate", err)
	}

	a.db = db
	a.ready = true
	return db, true, nil
}

// Execute runs an INSERT, UPDATE or DELETE. For inserts the generated id is
// reported through Result.InsertedID whichever backend is in use.
func (a *Adapter) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	var res Result
	err := a.run(ctx, "execute", query, args, func(ctx context.Context, db *sql.DB, q string, qargs []any) error {
		res = Result{}
		insert := isInsert(q)

		if insert && a.cfg.Dialect == Postgres {
			var id int64
			if err := db.QueryRowContext(ctx, withReturningID(q), qargs...).Scan(&id); err != nil {
				return err
			}
			res = Result{InsertedID: id, HasInsertedID: true, RowsAffected: 1}
			return nil
		}

		r, err := db.ExecContext(ctx, q, qargs...)
		if err != nil {
			return err
		}
		if res.RowsAffected, err = r.RowsAffected(); err != nil {
			return err
		}
		if insert {
			if id, err := r.LastInsertId(); err == nil {
				res.InsertedID = id
				res.HasInsertedID = true
			}
		}
		return nil
	})
	return res, err
}

// QueryAll runs a SELECT and calls scan once per row.
func (a *Adapter) QueryAll(ctx context.Context, query string, args []any, scan func(RowScanner) error) error {
	return a.run(ctx, "query", query, args, func(ctx context.Context, db *sql.DB, q string, qargs []any) error {
		rows, err := db.QueryContext(ctx, q, qargs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			if err := scan(rows); err != nil {
				return permanentError{err: err}
			}
		}
		if err := rows.Err(); err != nil {
			return permanentError{err: err}
		}
		return nil
	})
}

// QueryOne runs a SELECT and scans the first row, if any. found is false when no row matched.
func (a *Adapter) QueryOne(ctx context.Context, query string, args []any, scan func(RowScanner) error) (bool, error) {
	found := false
	err := a.run(ctx, "query one", query, args, func(ctx context.Context, db *sql.DB, q string, qargs []any) error {
		rows, err := db.QueryContext(ctx, q, qargs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			return rows.Err()
		}
		found = true
		if err := scan(rows); err != nil {
			return permanentError{err: err}
		}
		return nil
	})
	return found, err
}

type statementFunc func(ctx context.Context, db *sql.DB, query string, args []any) error

func (a *Adapter) run(ctx context.Context, op, query string, args []any, fn statementFunc) error {
	db, err := a.handle(ctx)
	if err != nil {
		return err
	}

	q, qargs := query, args
	if a.cfg.Dialect == SQLite {
		if q, qargs, err = rebind(query, args); err != nil {
			return custom_errors.NewStoreError(op, err)
		}
	}

	retryable := isTransient
	if isInsert(q) {
		retryable = isRetryableInsert
	}

	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, a.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
				break
			}
		}

		stmtCtx, cancel := a.statementContext(ctx)
		lastErr = fn(stmtCtx, db, q, qargs)
		cancel()

		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || ctx.Err() != nil {
			break
		}
		a.logger.Warnw("Transient database error, retrying",
			logger.FieldDialect, a.cfg.Dialect.String(),
			logger.FieldAttempt, attempt+1,
			logger.FieldError, lastErr,
		)
	}

	var p permanentError
	if errors.As(lastErr, &p) {
		lastErr = p.err
	}
	a.logger.Errorw("Statement failed",
		logger.FieldDialect, a.cfg.Dialect.String(),
		logger.FieldQuery, strings.Join(strings.Fields(q), " "),
		logger.FieldArgs, qargs,
		logger.FieldError, lastErr,
	)
	return custom_errors.NewStoreError(op, errors.WithStack(lastErr))
}

func (a *Adapter) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.StatementTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.StatementTimeout)
}

func isInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT")
}

func withReturningID(query string) string {
	q := strings.TrimRight(strings.TrimSpace(query), ";")
	if strings.Contains(strings.ToUpper(q), "RETURNING") {
		return q
	}
	return q + " RETURNING id"
}
