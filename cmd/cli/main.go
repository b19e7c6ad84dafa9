package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akeren/trustlink-waitlist/config"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/pkg/migrations"
	"github.com/akeren/trustlink-waitlist/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		direction, err := migrations.ParseDirection(argAt(args, 1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			printUsage()
			os.Exit(1)
		}
		if err := runMigrations(logger, direction); err != nil {
			logger.Error("Database migration failed", "direction", direction, "error", err.Error())
			os.Exit(1)
		}

	case "stats":
		if err := withDatabase(logger, func(db *gorm.DB) error {
			return printStats(os.Stdout, logger, db)
		}); err != nil {
			logger.Error("Failed to print waitlist stats", "error", err.Error())
			os.Exit(1)
		}

	case "export":
		if err := withDatabase(logger, func(db *gorm.DB) error {
			return writeExport(os.Stdout, logger, db, argAt(args, 1))
		}); err != nil {
			logger.Error("Failed to export waitlist", "error", err.Error())
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrations(logger *log.Logger, direction migrations.Direction) error {
	return withDatabase(logger, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get SQL DB instance: %w", err)
		}

		migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := migrations.Run(ctx, sqlDB, migrations.Config{Dir: migrationsDir, Logger: logger}, direction); err != nil {
			return err
		}

		logger.Info("Database migrations completed", "direction", direction)
		return nil
	})
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(logger *log.Logger, fn func(db *gorm.DB) error) error {
	db, err := config.NewDatabase(logger, config.NewDBConfigFromEnv())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	return fn(db)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printUsage() {
	fmt.Println("Usage: cli <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate [up|down]        Apply (default) or revert database migrations and exit")
	fmt.Println("  stats                    Print signup counts by actor type and top cities")
	fmt.Println("  export [actor_type]      Write the waitlist as CSV to stdout")
}
