package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qabank/qabank/infrastructure/persistence"
	"github.com/qabank/qabank/internal/config"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/log"
)

func migrateCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema and seed the public aggregate set.

Serve runs migrations on startup; this command exists for deployments that
migrate separately from serving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	return cmd
}

func runMigrate(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.Configure(cfg)

	dataDir, err := config.PrepareDataDir(cfg.DataDir())
	if err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}

	dbURL := cfg.DBURL()
	if dbURL == "" {
		dbURL = "sqlite:///" + dataDir + "/qabank.db"
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := persistence.RunMigrations(ctx, db); err != nil {
		return err
	}

	logger.Info("migrations complete", "db", redactDBURL(dbURL))
	return nil
}

// redactDBURL strips credentials from a database URL for logging.
func redactDBURL(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
