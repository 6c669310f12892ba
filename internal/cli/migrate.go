package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"skin-assessment-service/internal/config"
	"skin-assessment-service/internal/domain"
	pgmigrations "skin-assessment-service/internal/infra/postgres/migrations"
	infraredis "skin-assessment-service/internal/infra/redis"
	"skin-assessment-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var reseed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(os.Stdout, cfg.Log.Level)
			if err != nil {
				log.Warn("invalid log level", "error", err)
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			if reseed {
				return reseedDefaultBank(cmd.Context(), cfg, log)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reseed, "reseed", false, "overwrite the stored default question bank with the built-in one")
	return cmd
}

func openDB(cfg config.Config) (*bun.DB, error) {
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("database schema up to date")
		return nil
	}
	log.Info("migrations applied", "group", group.String())
	return nil
}

func reseedDefaultBank(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgmigrations.SeedQuestionBank(ctx, db, domain.DefaultQuestionBank(), true); err != nil {
		return err
	}
	log.Info("default question bank reseeded", "bank", domain.DefaultQuestionBankID)

	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	if err := dropCachedBank(ctx, client, domain.DefaultQuestionBankID); err != nil {
		return fmt.Errorf("invalidate cached bank: %w", err)
	}
	log.Info("cached question bank invalidated", "bank", domain.DefaultQuestionBankID)
	return nil
}

// dropCachedBank removes a bank from the Redis cache so running services reload it.
func dropCachedBank(ctx context.Context, client *redis.Client, bankID string) error {
	return infraredis.NewQuestionBankRepository(client, nil, 0).Invalidate(ctx, bankID)
}
