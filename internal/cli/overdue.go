package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/lending/internal/borrow"
)

func newOverdueCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List loans past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			app, err := flags.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			loans, err := app.Borrow.Overdue(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, loans)
			}
			printOverdueTable(out, loans)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}

func printOverdueTable(w io.Writer, loans []borrow.LoanView) {
	if len(loans) == 0 {
		okf(w, "No overdue loans")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BORROW\tBOOK\tUSER\tDUE\tDAYS LATE")
	for _, loan := range loans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			loan.ID,
			loan.BookTitle,
			loan.User.Username,
			loan.DueAt.UTC().Format("2006-01-02 15:04"),
			color.RedString("%d", -loan.DaysRemaining),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d overdue loans\n", len(loans))
}
