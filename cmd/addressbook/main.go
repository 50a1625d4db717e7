// Command addressbook manages contacts from the shell against the same
// backing store the server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"addressbook/internal/app"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/logger"
)

// globalFlags override the environment configuration.
type globalFlags struct {
	driver     string
	sqlitePath string
	dsn        string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "addressbook",
		Short: "Manage address book contacts",
		Long: `Manage address book contacts stored in the configured backing store.

The store is selected by ADDRESSBOOK_DRIVER (sqlite, postgres, pgx, redis, memory)
and the credentials file named by ADDRESSBOOK_CREDENTIALS_FILE. Flags override both.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "backing store driver")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", "", "sqlite database file")
	root.PersistentFlags().StringVar(&flags.dsn, "database-url", "", "postgres connection URL")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newListCmd(flags),
		newFindCmd(flags),
		newAddCmd(flags),
		newDeleteCmd(flags),
		newImportCmd(flags),
		newExportCmd(flags),
		newTokenCmd(),
	)
	return root
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if flags.driver != "" {
		cfg.Database.Driver = flags.driver
	}
	if flags.sqlitePath != "" {
		cfg.Database.SQLitePath = flags.sqlitePath
	}
	if flags.dsn != "" {
		cfg.Database.URL = flags.dsn
	}
	return cfg, nil
}

// openApp builds the service for one command. The caller closes it.
func openApp(cmd *cobra.Command, flags *globalFlags) (*app.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:  flags.logLevel,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	a, err := app.Build(cmd.Context(), cfg, log, nil)
	if err != nil {
		return nil, fmt.Errorf("open address book: %w", err)
	}
	return a, nil
}
