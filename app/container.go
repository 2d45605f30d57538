package app

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RezaEskandarii/jobboard/config"
	"github.com/RezaEskandarii/jobboard/internal/auth"
	"github.com/RezaEskandarii/jobboard/internal/db"
	"github.com/RezaEskandarii/jobboard/internal/reporter"
	"github.com/RezaEskandarii/jobboard/internal/store"
	"github.com/RezaEskandarii/jobboard/internal/store/sqlstore"
	"github.com/RezaEskandarii/jobboard/web"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config *config.Config
	Logger *zap.SugaredLogger
	Clock  clockwork.Clock

	// Storage adapter (one pool per process, shared by all stores)
	DB *db.Adapter

	JobStore store.JobStore
	Gate     *auth.Gate
	Reporter *reporter.Reporter
	Routes   *web.HttpRouteHandler
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// No connection is made here; the adapter connects on Init or first use.
// Pass optional WithDB, WithClock for testing.
func NewContainer(cfg *config.Config, logger *zap.SugaredLogger, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}

	clock := opt.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var adapter *db.Adapter
	if opt.db != nil {
		adapter = db.NewWithDB(opt.db, cfg.Database(), logger)
	} else {
		adapter = db.New(cfg.Database(), logger)
	}

	authCfg, err := cfg.Auth()
	if err != nil {
		return nil, errors.Wrap(err, "init auth")
	}
	gate, err := auth.New(authCfg, clock, logger)
	if err != nil {
		return nil, errors.Wrap(err, "init auth")
	}

	jobStore := sqlstore.NewJobStore(adapter, clock, logger)

	rep, err := reporter.New(jobStore, cfg.StatsSchedule, clock, logger)
	if err != nil {
		return nil, errors.Wrap(err, "init reporter")
	}

	routes := web.NewRouteHandler(jobStore, gate, adapter, clock, logger, cfg.IsProduction(), cfg.RateLimit)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Clock:    clock,
		DB:       adapter,
		JobStore: jobStore,
		Gate:     gate,
		Reporter: rep,
		Routes:   routes,
	}, nil
}

// Serve runs the HTTP API and the status reporter until ctx is cancelled or
// one of them fails.
func (c *Container) Serve(ctx context.Context) error {
	srv := web.NewServer(fmt.Sprintf(":%d", c.Config.Port), c.Routes.Routes(), c.Logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		return c.Reporter.Run(ctx)
	})
	return g.Wait()
}

// Close releases the database pool.
func (c *Container) Close() error {
	return c.DB.Close()
}
