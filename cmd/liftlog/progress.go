// ABOUTME: CLI command for showing progress on one exercise.
// ABOUTME: Prints each session's volume and the heaviest weight lifted.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress <exercise>",
	Short: "Show progress for an exercise",
	Long: `Show every session of one exercise, oldest first, with volume
(weight x reps x sets) and the heaviest weight lifted.

Examples:
  liftlog progress squat
  liftlog progress "bench press"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := service.Progress(context.Background(), currentUser(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to get progress: %w", err)
		}
		if !res.Success {
			fmt.Printf("%s: %s\n", res.Exercise, res.Error)
			return nil
		}

		color.New(color.Bold).Println(res.Exercise)
		faint := color.New(color.Faint)
		for _, p := range res.ProgressData {
			fmt.Printf("  %s %s x %d x %d  %s\n",
				faint.Sprint(p.Date),
				p.Weight.String(),
				p.Reps,
				p.Sets,
				faint.Sprintf("volume %s", p.Volume.String()))
		}
		color.Green("Best: %s on %s", res.MaxWeight.String(), res.MaxWeightDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
