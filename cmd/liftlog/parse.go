// ABOUTME: CLI command for logging a workout from plain language.
// ABOUTME: Prints the saved workout or the fields still needed.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/workout"
	"github.com/spf13/cobra"
)

var (
	parseHistoryFile string
	parsePrevious    string
)

var parseCmd = &cobra.Command{
	Use:     "parse <message>",
	Aliases: []string{"p"},
	Short:   "Log a workout described in plain language",
	Long: `Send a message to the language model and save the workout it describes.
If exercise, weight, reps, or sets are missing, the fields still needed are
printed instead and nothing is saved.

Examples:
  liftlog parse "squat 225 for 5 sets of 5"
  liftlog parse "3 sets of 8" --previous '{"exercise":"bench press","weight":135}'
  liftlog parse "same again" --history-file chat.json`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{completionKey: completionRequired},
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := loadHistory(parseHistoryFile)
		if err != nil {
			return err
		}

		var previous *models.WorkoutRecord
		if parsePrevious != "" {
			var raw models.RawWorkout
			if err := json.Unmarshal([]byte(parsePrevious), &raw); err != nil {
				return fmt.Errorf("invalid --previous: %w", err)
			}
			previous = raw.Normalize()
		}

		res, err := service.ParseWorkout(context.Background(), workout.ParseRequest{
			UserID:      currentUser(),
			Message:     strings.Join(args, " "),
			ChatHistory: history,
			Previous:    previous,
		})
		if err != nil {
			return err
		}

		printParseResult(res)
		return nil
	},
}

// loadHistory reads a JSON array of {role, content} messages.
func loadHistory(path string) ([]models.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var history []models.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("invalid history file: %w", err)
	}
	return history, nil
}

func printParseResult(res *workout.ParseResult) {
	switch res.Outcome {
	case workout.OutcomePersisted:
		color.Green("✓ %s", res.Message)
		fmt.Printf("  %s\n", describeRecord(res.Workout))
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(res.WorkoutID))
	case workout.OutcomePersistFailed:
		color.Red("✗ %s", res.Message)
		fmt.Printf("  %s\n", describeRecord(res.Workout))
	case workout.OutcomeAwaitingFollowUp:
		color.Yellow("? %s", res.Message)
		fmt.Printf("  so far: %s\n", describeRecord(res.Workout))
	default:
		color.Red("✗ %s", res.Message)
	}
}

// describeRecord renders a possibly partial record, with ? for unknown fields.
func describeRecord(r *models.WorkoutRecord) string {
	if r == nil {
		return "nothing recognized"
	}
	exercise, weight, reps, sets := "?", "?", "?", "?"
	if r.Exercise != nil {
		exercise = *r.Exercise
	}
	if r.Weight != nil {
		weight = models.NewWeight(*r.Weight).String()
	}
	if r.Reps != nil {
		reps = fmt.Sprint(*r.Reps)
	}
	if r.Sets != nil {
		sets = fmt.Sprint(*r.Sets)
	}
	return fmt.Sprintf("%s %s x %s reps x %s sets", exercise, weight, reps, sets)
}

func init() {
	parseCmd.Flags().StringVar(&parseHistoryFile, "history-file", "", "JSON file of earlier chat messages")
	parseCmd.Flags().StringVar(&parsePrevious, "previous", "", "partial workout JSON from the previous turn")
	rootCmd.AddCommand(parseCmd)
}
