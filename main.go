package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/harumaki2000/medication-app/confs"
	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/logger"
	"github.com/harumaki2000/medication-app/server"
	"github.com/spf13/cobra"
)

// Version information, set at build time using ldflags
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "medication-app",
	Short: "Medication tracking API server",
	Long: `Backend for recording medications, their daily timings and
every dose actually taken.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("medication-app version %s\n", Version)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Go version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	// connect to database, schema is migrated on connect
	database, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run server
	return server.NewServer(database, cfg, log).Start(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := confs.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	database, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	log.Info("schema is up to date")
	return database.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
