package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/barcodegen/internal/repositories"
	"github.com/desertthunder/barcodegen/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and prepares the configured counter store.
//
// For sqlite this applies pending migrations (or rolls back the latest one with
// --rollback). Pebble stores are created on first open; the memory driver has
// nothing to prepare.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		configPath = r.configPath
	}

	config, err := r.ensureConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config

	switch config.Database.Driver {
	case "sqlite":
		return r.setupSQLite(config, cmd.Bool("rollback"))
	case "pebble":
		if cmd.Bool("rollback") {
			return fmt.Errorf("%w: --rollback only applies to the sqlite driver", shared.ErrInvalidArgument)
		}
		kv, err := repositories.OpenKVCounterStore(config.Database.Path)
		if err != nil {
			return err
		}
		if err := kv.Close(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}
		r.logger.Infof("setup complete for pebble store: %v", config.Database.Path)
	default:
		r.logger.Warn("memory driver keeps counters for the life of the process only")
	}

	return r.writePlain("✓ %s ready (%s store)\n", configPath, config.Database.Driver)
}

// ensureConfig loads configPath, writing the embedded template there first when it does not exist.
func (r *Runner) ensureConfig(configPath string) (*shared.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return nil, err
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return config, nil
}

func (r *Runner) setupSQLite(config *shared.Config, rollback bool) error {
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if rollback {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	r.logger.Info("setup complete", "database", config.Database.Path, "applied", versions)
	return nil
}
