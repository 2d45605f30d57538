package db

import (
	"fmt"
	"strings"
	"time"
)

type Dialect int

const (
	Postgres Dialect = iota + 1
	SQLite
)

// String converts the Dialect enum to a human-readable string.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	}
	return "unknown"
}

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite3"
	}
	return ""
}

const (
	DefaultStatementTimeout = 5 * time.Second
	DefaultMaxRetries       = 2
	DefaultRetryBackoff     = 100 * time.Millisecond

	// SQLiteBusyTimeoutMS is how long SQLite waits on a locked database before failing.
	SQLiteBusyTimeoutMS = 5000
)

// Config selects a backend and tunes how statements are run against it.
type Config struct {
	Dialect Dialect
	// DSN is the PostgreSQL connection string or the SQLite file path.
	DSN string

	StatementTimeout time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
}

// ConfigFor picks PostgreSQL when a connection string is present and falls back
// to the SQLite file otherwise.
func ConfigFor(databaseURL, sqlitePath string) Config {
	cfg := Config{
		Dialect:          SQLite,
		DSN:              sqlitePath,
		StatementTimeout: DefaultStatementTimeout,
		MaxRetries:       DefaultMaxRetries,
		RetryBackoff:     DefaultRetryBackoff,
	}
	if url := strings.TrimSpace(databaseURL); url != "" {
		cfg.Dialect = Postgres
		cfg.DSN = url
	}
	return cfg
}

func (c Config) dataSourceName() string {
	if c.Dialect != SQLite {
		return c.DSN
	}
	sep := "?"
	if strings.Contains(c.DSN, "?") {
		sep = "&"
	}
	return fmt.Sprintf("file:%s%s_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", c.DSN, sep, SQLiteBusyTimeoutMS)
}
