package cli

import (
	"github.com/spf13/cobra"
)

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed <fixture.yml>",
		Short: "Populate the catalog and accounts from a YAML fixture",
		Long: `Load categories, books and user accounts from a YAML fixture.

Existing users are skipped. Books are only added to an empty catalog unless --force
is given.

Example fixture:
  admin:
    username: librarian
    email: librarian@example.com
    password: change-me-please
  categories:
    - name: Fiction
  books:
    - title: Dune
      author: Frank Herbert
      type: PHYSICAL
      copies: 3
      categories: [Fiction]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := LoadFixture(args[0])
			if err != nil {
				return err
			}
			if err := fixture.Validate(); err != nil {
				return err
			}

			app, err := flags.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := fixture.Apply(cmd.Context(), app, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			okf(out, "Created %d users (%d already existed)", result.Users, result.SkippedUsers)
			okf(out, "Ensured %d categories", result.Categories)
			if result.SkippedBooks {
				warnf(out, "Catalog is not empty, skipped books (use --force to add them anyway)")
			} else {
				okf(out, "Created %d books", result.Books)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Add books even when the catalog already has some")
	return cmd
}
