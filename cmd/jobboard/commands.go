package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/RezaEskandarii/jobboard/app"
	"github.com/RezaEskandarii/jobboard/config"
	"github.com/RezaEskandarii/jobboard/internal/auth"
	"github.com/RezaEskandarii/jobboard/internal/logger"
)

const initTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()
		defer c.Logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		initCtx, cancel := context.WithTimeout(ctx, initTimeout)
		err = c.DB.Init(initCtx)
		cancel()
		if err != nil {
			c.Logger.Errorw("Database initialization failed", logger.FieldError, err)
			return err
		}

		c.Logger.Infow("Starting job board",
			"env", c.Config.Env.String(),
			"port", c.Config.Port,
			logger.FieldDialect, c.DB.Dialect().String(),
		)
		return c.Serve(ctx)
	},
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()
		defer c.Logger.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), initTimeout)
		defer cancel()
		if err := c.DB.Migrate(ctx); err != nil {
			c.Logger.Errorw("Schema initialization failed", logger.FieldError, err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema is ready\n", c.DB.Dialect())
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", config.DefaultPort, "port to listen on (overrides PORT)")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	config.SetDefaults(v)
	config.BindEnv(v)
}

func newContainer() (*app.Container, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	c, err := app.NewContainer(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return c, nil
}

