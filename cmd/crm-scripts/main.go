package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/schema"
	"crm-pharma-core/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	cfg       *config.Config
	log       *zap.Logger
	db        *postgres.Client
	txManager *postgres.TransactionManager
)

var rootCmd = &cobra.Command{
	Use:   "crm-scripts",
	Short: "Scripts de maintenance du CRM pharma",
	Long: `Outils d'exploitation exécutés hors du serveur HTTP, sur la même configuration
(variables d'environnement ou fichier .env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		log, err = logger.New(cfg.Environment, level)
		if err != nil {
			return fmt.Errorf("initialisation logger: %w", err)
		}

		db, err = postgres.NewClient(config.NewPostgresConfig(cfg))
		if err != nil {
			return fmt.Errorf("connexion PostgreSQL: %w", err)
		}
		txManager = postgres.NewTransactionManager(db)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

func newMigrator() (*schema.Migrator, error) {
	return schema.NewMigrator(db, txManager)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "journalisation détaillée")

	rootCmd.AddCommand(
		checkTablesCmd,
		listMissionsCmd,
		importClientsCmd,
		repairStatusesCmd,
		migrateCmd,
		renewCmd,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
