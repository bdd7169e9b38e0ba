package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/database"
)

// options are shared by every subcommand.
type options struct {
	version string
	dbPath  string
}

// config loads environment settings, applying the --db override.
func (o *options) config() *config.Config {
	cfg := config.NewConfig()
	if o.dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = o.dbPath
	}
	return cfg
}

func (o *options) openDatabase() (*database.Database, *config.Config, error) {
	cfg := o.config()
	if cfg.Database.LogLevel == "" || cfg.Database.LogLevel == "warn" {
		cfg.Database.LogLevel = "error"
	}
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

// NewRootCommand builds the liftlog command tree. Without a subcommand it serves HTTP.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{version: version}

	root := &cobra.Command{
		Use:   "liftlog",
		Short: "Workout log server",
		Long: `liftlog records workouts, the exercises performed in them and every set.

QUICK START:

  $ liftlog                                     # Serve the JSON API on :8190
  $ liftlog seed                                # Load the default exercise library
  $ liftlog workouts list --date 2026-03-14     # Show a day's workouts

CONFIGURATION:

  Settings come from environment variables, e.g. DATABASE_PATH,
  DATABASE_DRIVER (sqlite|postgres), AUTH_MODE (none|local|proxy).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path (overrides DATABASE_PATH)")

	root.AddCommand(
		newServeCommand(opts),
		newSeedCommand(opts),
		newUserCommand(opts),
		newWorkoutsCommand(opts),
		newExercisesCommand(opts),
	)
	return root
}
