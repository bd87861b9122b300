package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/lending/internal/entrypoint"
)

func newServeCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API together with the background task queue and the scheduler.

Configuration is read from the environment (PORT, HOST, DATABASE_PATH, AUTH_*, BORROW_*,
TASKS_*, OVERDUE_SCAN_*, AUDIT_*).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(flags.loadConfig(), version)
		},
	}
}
