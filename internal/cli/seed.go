package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/liftlog/internal/database/exercises"
)

func newSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add missing default exercises to the library",
		Long: `Add the default exercise library. Existing exercises are left alone,
so running seed again is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := exercises.NewRepository(db.DB).Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to seed exercises: %w", err)
			}

			out := cmd.OutOrStdout()
			if created == 0 {
				color.New(color.Faint).Fprintln(out, "Exercise library already up to date")
				return nil
			}
			color.New(color.FgGreen).Fprintf(out, "✓ Added %d exercises\n", created)
			return nil
		},
	}
}

func newExercisesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Inspect the exercise library",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every exercise",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := exercises.NewRepository(db.DB).ListExercises(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No exercises found. Run 'liftlog seed' to load the defaults.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, e := range list {
				category := ""
				if e.Category != nil {
					category = faint.Sprintf(" (%s)", *e.Category)
				}
				fmt.Fprintf(out, "%s %s%s\n", faint.Sprint(shortID(e.ID)), e.Name, category)
			}
			return nil
		},
	})
	return cmd
}

// shortID returns the 8-character prefix shown in listings.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
