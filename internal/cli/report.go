package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/lending/internal/reports"
)

func newReportCmd(flags *globalFlags) *cobra.Command {
	var (
		format    string
		withStats bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the per-category availability report",
		Long: `Print book counts per category, with how many can be read or borrowed right now.

Examples:
  lending report                 Table output
  lending report --stats         Include library-wide totals
  lending report --format json   Machine-readable output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			app, err := flags.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			rows, err := app.Reports.Categories(ctx)
			if err != nil {
				return err
			}

			var stats *reports.Stats
			if withStats {
				s, err := app.Reports.Stats(ctx)
				if err != nil {
					return err
				}
				stats = &s
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, reportOutput{Categories: rows, Stats: stats})
			}
			printCategoryTable(out, rows)
			if stats != nil {
				fmt.Fprintln(out)
				printStats(out, *stats)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Include library-wide totals")
	return cmd
}

type reportOutput struct {
	Categories []reports.CategoryReport `json:"categories" yaml:"categories"`
	Stats      *reports.Stats           `json:"stats,omitempty" yaml:"stats,omitempty"`
}

func printCategoryTable(w io.Writer, rows []reports.CategoryReport) {
	if len(rows) == 0 {
		warnf(w, "No categories found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tBOOKS\tAVAILABLE\tPHYSICAL\tEBOOKS")
	for _, row := range rows {
		available := fmt.Sprint(row.AvailableBooks)
		if row.TotalBooks > 0 && row.AvailableBooks == 0 {
			available = color.RedString(available)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\n", row.Category, row.TotalBooks, available, row.PhysicalBooks, row.Ebooks)
	}
	tw.Flush()
}

func printStats(w io.Writer, s reports.Stats) {
	header(w, "Library totals")
	fmt.Fprintf(w, "  Books:      %d (%d physical, %d ebooks)\n", s.TotalBooks, s.TotalPhysical, s.TotalEbooks)
	fmt.Fprintf(w, "  Copies:     %d available of %d\n", s.AvailableCopies, s.TotalCopies)
	fmt.Fprintf(w, "  Categories: %d\n", s.TotalCategories)
	fmt.Fprintf(w, "  Users:      %d\n", s.TotalUsers)

	loans := fmt.Sprintf("  Loans:      %d active", s.ActiveLoans)
	if s.OverdueLoans > 0 {
		loans += ", " + color.YellowString("%d overdue", s.OverdueLoans)
	}
	fmt.Fprintln(w, loans)
}
