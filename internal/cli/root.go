// Package cli implements the lending command line: the HTTP server plus a few
// maintenance commands that work directly on the database.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/lending/internal/config"
	"github.com/mrlokans/lending/internal/entrypoint"
)

type globalFlags struct {
	databasePath string
	noColor      bool
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "lending",
		Short: "Library lending service",
		Long: `lending tracks physical book copies and the loans made against them.

Run 'lending serve' to start the HTTP API. The other commands work directly on the
database configured with DATABASE_PATH or --db.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initColor(flags.noColor)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&flags.databasePath, "db", "", "Path to the SQLite database (default: $DATABASE_PATH or "+config.DefaultDatabasePath+")")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newServeCmd(flags, version),
		newSeedCmd(flags),
		newReportCmd(flags),
		newOverdueCmd(flags),
	)
	return root
}

// Execute is the entry point called from main.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies command line overrides.
func (f *globalFlags) loadConfig() *config.Config {
	cfg := config.NewConfig()
	if f.databasePath != "" {
		cfg.Database.Path = f.databasePath
	}
	return cfg
}

// openApp opens the database for a maintenance command. The gorm logger stays quiet
// unless DATABASE_LOG_LEVEL asks for more.
func (f *globalFlags) openApp() (*entrypoint.App, error) {
	cfg := f.loadConfig()
	if os.Getenv("DATABASE_LOG_LEVEL") == "" {
		cfg.Database.LogLevel = "silent"
	}
	return entrypoint.Open(cfg)
}
