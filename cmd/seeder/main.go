// cmd/seeder/main.go
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/unclebandit/campaign-crm/internal/config"
	"github.com/unclebandit/campaign-crm/internal/db"
	"github.com/unclebandit/campaign-crm/internal/repository"
	"github.com/unclebandit/campaign-crm/internal/service"
)

var (
	seedPath    string
	dbURL       string
	skipMigrate bool
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Load customers and orders from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetupLogging(logLevel, logFormat); err != nil {
			return err
		}

		if dbURL == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dbURL = cfg.DatabaseURL
		}

		file, err := loadSeedFile(seedPath)
		if err != nil {
			return err
		}

		database, err := db.Open(dbURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if !skipMigrate {
			if err := database.Migrate(); err != nil {
				return err
			}
		}

		svc := &service.IngestionService{
			CustomerRepo: &repository.CustomerRepository{DB: database},
			OrderRepo:    &repository.OrderRepository{DB: database},
		}
		customers, orders, err := seed(cmd.Context(), svc, file)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"file":      seedPath,
			"customers": customers,
			"orders":    orders,
		}).Info("database seeding completed")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&seedPath, "file", "f", "seed/sample.yaml", "seed file path")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "database connection URL (defaults to DATABASE_URL)")
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations before seeding")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (json, text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("seeding failed")
		os.Exit(1)
	}
}
