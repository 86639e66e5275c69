// seed creates the initial admin, agent and user accounts in the configured
// Postgres database. Existing emails are left untouched, so the command can
// be run repeatedly.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Elmamis69/ticket-master-api/internal/config"
	"github.com/Elmamis69/ticket-master-api/internal/observability"
	"github.com/Elmamis69/ticket-master-api/internal/persistence"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	"github.com/Elmamis69/ticket-master-api/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var filePath string
	var dryRun bool
	var migrate bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "YAML fixture of users (default: built-in accounts)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "report what would be created without writing")
	flagSet.BoolVar(&migrate, "migrate", false, "apply migrations before seeding")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	fixture := seed.DefaultFixture()
	if filePath != "" {
		if fixture, err = seed.LoadFixture(filePath); err != nil {
			return err
		}
	}

	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if migrate {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	seeder := seed.NewSeeder(repository.NewUserRepository(pg.PoolHandle()), cfg.Auth.BcryptCost, logger)
	result, err := seeder.Apply(ctx, fixture, dryRun)
	if err != nil {
		return err
	}

	logger.Info("seeding finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	if !dryRun && len(result.Created) > 0 {
		logger.Warn("default credentials were created; change these passwords in production")
	}
	return nil
}
