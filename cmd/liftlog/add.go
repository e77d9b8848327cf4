// ABOUTME: CLI command for logging a fully specified exercise.
// ABOUTME: Skips the language model and saves through the batch path.
package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/workout"
	"github.com/spf13/cobra"
)

var addAt string

var addCmd = &cobra.Command{
	Use:     "add <exercise> <weight> <reps> <sets>",
	Aliases: []string{"a"},
	Short:   "Log an exercise",
	Long: `Log an exercise with explicit numbers. Use 0 for bodyweight movements.

Examples:
  liftlog add squat 225 5 5
  liftlog add "bench press" 135.5 8 3
  liftlog add pull-up 0 10 3 --at 2025-01-31`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := models.ParseWeight(args[1])
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[1])
		}
		reps, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[2])
		}
		sets, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid sets: %s", args[3])
		}

		svc := service
		if addAt != "" {
			at, err := parseTime(addAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
			svc = svc.WithClock(func() time.Time { return at })
		}

		res, err := svc.SubmitWorkout(context.Background(), currentUser(), []workout.Exercise{{
			Name:   args[0],
			Weight: weight,
			Reps:   reps,
			Sets:   sets,
		}})
		if err != nil {
			return err
		}

		color.Green("✓ Added %s", args[0])
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(res.WorkoutIDs[0]),
			res.Date)
		return nil
	},
}

// parseTime accepts the timestamp formats used by --at flags.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	rootCmd.AddCommand(addCmd)
}
