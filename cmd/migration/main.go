package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/latoulicious/vtmsu/internal/config"
	"github.com/latoulicious/vtmsu/internal/version"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/migration"
	"github.com/latoulicious/vtmsu/pkg/hunting"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"github.com/latoulicious/vtmsu/pkg/seed"
	"github.com/latoulicious/vtmsu/tools"
	"github.com/spf13/cobra"
)

var (
	configDir string
	dbDriver  string
	dbURL     string
	confirm   bool
)

var rootCmd = &cobra.Command{
	Use:           "vtmsu-migrate",
	Short:         "Manage the vtmsu database",
	Long:          `vtmsu-migrate creates and updates the vtmsu schema, loads the game catalog and runs the world maintenance jobs by hand.`,
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table and apply the incremental steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(_ context.Context, manager *database.DatabaseManager) error {
			return migration.RunMigration(manager.DB())
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the incremental migration steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(_ context.Context, manager *database.DatabaseManager) error {
			return migration.Rollback(manager.DB())
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table and migrate again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm {
			return fmt.Errorf("reset drops all data, pass --yes to confirm")
		}
		return withDatabase(func(_ context.Context, manager *database.DatabaseManager) error {
			if err := migration.Reset(manager.DB()); err != nil {
				return err
			}
			return migration.RunMigration(manager.DB())
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml|catalog.toml>",
	Short: "Load factions, clans, traits and hunting data from a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := seed.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		return withDatabase(func(ctx context.Context, manager *database.DatabaseManager) error {
			stats, err := seed.Apply(ctx, manager.DB(), catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, linked %d\n", stats.Created, stats.Updated, stats.Linked)
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity, schema and transaction support",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, manager *database.DatabaseManager) error {
			return tools.DBCheck(ctx, manager, cmd.OutOrStdout())
		})
	},
}

var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Spawn hunting instances on every ground that needs them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, manager *database.DatabaseManager) error {
			spawned, err := hunting.NewSpawner(manager.DB()).SpawnAll(ctx, time.Now().UTC())
			fmt.Fprintf(cmd.OutOrStdout(), "spawned %d instances\n", spawned)
			return err
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired sessions, tokens and hunting instances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, manager *database.DatabaseManager) error {
			result, err := manager.CleanupExpired(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions, %d verification tokens, %d hunting instances\n",
				result.Sessions, result.VerificationTokens, result.HuntingInstances)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and config/vtmsu.yaml")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: postgres, mysql or sqlite (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Database connection string (overrides DATABASE_URL)")
	resetCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm dropping every table")

	rootCmd.AddCommand(migrateCmd, rollbackCmd, resetCmd, seedCmd, checkCmd, spawnCmd, cleanupCmd)
}

// withDatabase loads the configuration, connects and runs fn
func withDatabase(fn func(ctx context.Context, manager *database.DatabaseManager) error) error {
	if dbDriver != "" {
		os.Setenv("DB_DRIVER", dbDriver)
	}
	if dbURL != "" {
		os.Setenv("DATABASE_URL", dbURL)
	}

	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	factory := logging.NewLoggerFactory(cfg.LoggingOptions())
	logging.SetGlobalLoggerFactory(factory)

	db, err := database.NewGormDB(cfg.DatabaseOptions(factory.CreateLogger("gorm")))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	manager := database.NewDatabaseManager(db)
	defer manager.Close()

	return fn(context.Background(), manager)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
