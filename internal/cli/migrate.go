package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"quizctl/internal/config"
	pgmigrations "quizctl/internal/infra/postgres/migrations"
	"quizctl/internal/logging"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the attempt archive schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			group, err := runMigrations(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if group.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Archive schema is up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", group)
			return nil
		},
	}
}

func runMigrations(ctx context.Context, cfg config.Config) (*migrate.MigrationGroup, error) {
	if cfg.Archive.PostgresURL == "" {
		return nil, fmt.Errorf("archive.postgres_url not configured")
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Archive.PostgresURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("archive migrations applied", zap.String("group", group.String()))
	return group, nil
}
