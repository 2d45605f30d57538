package app

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	// Optional: inject custom DB instead of creating from config
	db    *sql.DB
	clock clockwork.Clock
}

// WithDB injects an already migrated database connection. Useful for testing.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithClock replaces the wall clock. Useful for testing.
func WithClock(clock clockwork.Clock) ContainerOption {
	return func(c *containerConfig) {
		c.clock = clock
	}
}
