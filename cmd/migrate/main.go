package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"quiz-grader/internal/config"
	"quiz-grader/internal/database"
	"quiz-grader/internal/logger"
	"quiz-grader/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the quiz database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newUpCmd(cfg), newDownCmd(cfg), newVersionCmd(cfg), newSeedAdminCmd(cfg))
	return cmd
}

func newUpCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.RunMigrations(cfg.GetDSN()); err != nil {
				return err
			}
			logger.Get().Info("Migrations applied")
			return nil
		},
	}
}

func newDownCmd(cfg *config.Config) *cobra.Command {
	var (
		steps int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 && !all {
				return fmt.Errorf("--steps must be at least 1")
			}
			m, err := database.NewMigrator(cfg.GetDSN())
			if err != nil {
				return err
			}
			defer m.Close()

			if all {
				err = m.Down()
			} else {
				err = m.Steps(-steps)
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("could not roll back migrations: %w", err)
			}
			logger.Get().Info("Migrations rolled back", zap.Int("steps", steps), zap.Bool("all", all))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

func newVersionCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := database.NewMigrator(cfg.GetDSN())
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("could not read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}

// newSeedAdminCmd registers the configured admin username so admin login can
// succeed. Running it twice is harmless.
func newSeedAdminCmd(cfg *config.Config) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Register the admin username in admin_users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("admin username is empty")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := database.NewSQLXPostgresDB(ctx, cfg.GetDSN(), database.Options{
				MaxRetries: cfg.DB.MaxRetries,
				RetryDelay: cfg.DB.RetryDelay,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.NewAdminDatabaseAdapter(db).EnsureAdmin(ctx, username); err != nil {
				return err
			}
			logger.Get().Info("Admin user registered", zap.String("username", username))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", cfg.Admin.Username, "admin username to register")
	return cmd
}
