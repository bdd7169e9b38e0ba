package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	"github.com/mrlokans/liftlog/internal/entities"
)

func newWorkoutsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "Inspect logged workouts",
	}

	var userID, date string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List one owner's workouts on a date",
		Long: `List the workouts an owner logged on one calendar date, newest first,
with their exercises and sets.

EXAMPLES:

  liftlog workouts list                          # Today, single-user owner
  liftlog workouts list --date 2026-03-14
  liftlog workouts list --user alice -d 2026-03-14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := civil.Today(time.Local)
			if date != "" {
				parsed, err := civil.Parse(date)
				if err != nil {
					return err
				}
				day = parsed
			}

			db, cfg, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			owner := userID
			if owner == "" {
				owner = cfg.Auth.DefaultUserID
			}

			list, err := workouts.NewRepository(db.DB).GetWorkoutsByDate(cmd.Context(), owner, day)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}

			printWorkouts(cmd.OutOrStdout(), day, list)
			return nil
		},
	}
	list.Flags().StringVar(&userID, "user", "", "owner id (default AUTH_DEFAULT_USER_ID)")
	list.Flags().StringVarP(&date, "date", "d", "", "calendar date YYYY-MM-DD (default today)")

	cmd.AddCommand(list)
	return cmd
}

func printWorkouts(out io.Writer, day civil.Date, list []entities.Workout) {
	if len(list) == 0 {
		fmt.Fprintf(out, "No workouts on %s.\n", day)
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for i, w := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s %s %s\n", w.Date, bold.Sprint(w.DisplayName()), faint.Sprint(shortID(w.ID)))

		for _, entry := range w.WorkoutExercises {
			fmt.Fprintf(out, "  %d. %s\n", entry.Order, entry.Exercise.Name)
			for _, s := range entry.Sets {
				line := fmt.Sprintf("     #%d  %d x %s %s", s.SetNumber, s.Reps, s.Weight.StringFixed(2), s.Unit)
				if s.RPE != nil {
					line += fmt.Sprintf("  RPE %d", *s.RPE)
				}
				fmt.Fprintln(out, line)
			}
		}
	}
}
