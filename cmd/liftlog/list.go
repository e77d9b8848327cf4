// ABOUTME: CLI command for listing saved workouts.
// ABOUTME: Shows the full summary, one date, or one exercise.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/spf13/cobra"
)

var (
	listDate     string
	listExercise string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List workouts",
	Long: `List saved workouts.

OUTPUT FORMAT:

  Each line shows: DATE  EXERCISE  WEIGHT x REPS x SETS

FILTERING:

  --date       only workouts on one day (YYYY-MM-DD)
  --exercise   only one exercise, newest first

EXAMPLES:

  liftlog list                      # everything, grouped by day
  liftlog list --date 2025-01-31
  liftlog list --exercise squat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user := currentUser()

		switch {
		case listDate != "":
			res, err := service.ByDate(ctx, user, listDate)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			printWorkouts(res.Workouts)
		case listExercise != "":
			res, err := service.ByExercise(ctx, user, listExercise)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			printWorkouts(res.Workouts)
		default:
			res, err := service.Summary(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			if len(res.WorkoutSummary) == 0 {
				fmt.Println("No workouts found.")
				return nil
			}
			for _, day := range res.WorkoutSummary {
				color.New(color.Bold).Println(day.Date)
				printWorkouts(day.Workouts)
			}
		}
		return nil
	},
}

func printWorkouts(workouts []*models.StoredWorkout) {
	if len(workouts) == 0 {
		fmt.Println("No workouts found.")
		return
	}
	faint := color.New(color.Faint)
	for _, w := range workouts {
		fmt.Printf("  %s %s %s x %d x %d\n",
			faint.Sprint(w.Date),
			padRight(w.Exercise, 20),
			w.Weight.String(),
			w.Reps,
			w.Sets)
	}
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "only workouts on this date")
	listCmd.Flags().StringVarP(&listExercise, "exercise", "e", "", "only this exercise")
	rootCmd.AddCommand(listCmd)
}
