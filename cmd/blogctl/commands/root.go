package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/database"
	"github.com/blog-publishing-api/pkg/logger"
)

var (
	// Global flags
	migrationsDir string
	verbose       bool
	jsonOutput    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Operations tool for the blog publishing API",
	Long: `blogctl manages the blog publishing database and accounts.

Connection settings are read from the same environment variables as the
server (DB_HOST, DB_NAME, JWT_SECRET_KEY, ...).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory for migration files (defaults to MIGRATIONS_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// environment is what every subcommand needs to reach the database
type environment struct {
	cfg *config.Config
	db  *database.DB
	log zerolog.Logger
}

func openEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, "pretty")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if migrationsDir != "" {
		cfg.Database.MigrationsPath = migrationsDir
	}
	return &environment{cfg: cfg, db: db, log: log}, nil
}

func (e *environment) Close() {
	e.db.Close()
}

// printResult writes v as JSON with --json, or text otherwise
func printResult(v interface{}, text string) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(text)
	return nil
}
