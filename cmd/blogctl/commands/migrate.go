package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to keep the schema in sync with the server.

Subcommands:
  up       - Apply pending migrations
  down     - Roll back the last migration
  to       - Migrate up or down to a specific version
  version  - Show the current schema version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvironment(func(env *environment) error {
			if err := env.db.RunMigrations(env.cfg.Database.MigrationsPath); err != nil {
				return err
			}
			return printVersion(env)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvironment(func(env *environment) error {
			if err := env.db.MigrateDown(env.cfg.Database.MigrationsPath); err != nil {
				return err
			}
			return printVersion(env)
		})
	},
}

var migrateToCmd = &cobra.Command{
	Use:   "to VERSION",
	Short: "Migrate to a specific version",
	Long: `Migrate up or down to a specific schema version.

Examples:
  blogctl migrate to 2     # Schema with users and articles only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withEnvironment(func(env *environment) error {
			if err := env.db.MigrateToVersion(env.cfg.Database.MigrationsPath, uint(version)); err != nil {
				return err
			}
			return printVersion(env)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvironment(printVersion)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateToCmd, migrateVersionCmd)
}

func withEnvironment(fn func(env *environment) error) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

func printVersion(env *environment) error {
	version, dirty, err := env.db.MigrationVersion(env.cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("schema version %d", version)
	if dirty {
		text += " (dirty)"
	}
	return printResult(map[string]interface{}{"version": version, "dirty": dirty}, text)
}
