// ABOUTME: Export and import of stored workouts.
// ABOUTME: Supports JSON, YAML, and Markdown export and JSON import across backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/liftlog/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the format version written by every export.
const ExportVersion = "1.0"

// ExportData is the full export format for workout data.
type ExportData struct {
	Version    string                  `json:"version"`
	ExportedAt time.Time               `json:"exported_at"`
	Tool       string                  `json:"tool"`
	Workouts   []*models.StoredWorkout `json:"workouts"`
}

// ExportFilter narrows an export. Zero values export everything.
type ExportFilter struct {
	UserID string
	// Since is an inclusive YYYY-MM-DD lower bound on the workout date.
	Since string
}

// GetAllData collects the workouts matching filter for export.
func GetAllData(ctx context.Context, repo Repository, filter ExportFilter) (*ExportData, error) {
	var (
		workouts []*models.StoredWorkout
		err      error
	)
	if filter.UserID != "" {
		workouts, err = repo.WorkoutsByUser(ctx, filter.UserID)
	} else {
		workouts, err = repo.AllWorkouts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	if filter.Since != "" {
		kept := workouts[:0]
		for _, w := range workouts {
			if w.Date >= filter.Since {
				kept = append(kept, w)
			}
		}
		workouts = kept
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "liftlog",
		Workouts:   workouts,
	}, nil
}

// ExportJSON exports data as indented JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports data as YAML, grouped by user.
func ExportYAML(data *ExportData) ([]byte, error) {
	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Users:      make(map[string][]yamlWorkout),
	}
	for _, w := range data.Workouts {
		out.Users[w.UserID] = append(out.Users[w.UserID], yamlWorkout{
			ID:        w.WorkoutID,
			Date:      w.Date,
			Timestamp: w.Timestamp,
			Exercise:  w.Exercise,
			Weight:    yamlWeight(w.Weight),
			Reps:      w.Reps,
			Sets:      w.Sets,
		})
	}
	return yaml.Marshal(out)
}

type yamlExport struct {
	Version    string                   `yaml:"version"`
	ExportedAt string                   `yaml:"exported_at"`
	Tool       string                   `yaml:"tool"`
	Users      map[string][]yamlWorkout `yaml:"users"`
}

type yamlWorkout struct {
	ID        string     `yaml:"id"`
	Date      string     `yaml:"date"`
	Timestamp string     `yaml:"timestamp"`
	Exercise  string     `yaml:"exercise"`
	Weight    yamlWeight `yaml:"weight"`
	Reps      int        `yaml:"reps"`
	Sets      int        `yaml:"sets"`
}

// yamlWeight writes the exact decimal as an untagged plain scalar.
type yamlWeight models.Weight

func (w yamlWeight) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: models.Weight(w).String()}, nil
}

// ExportMarkdown renders one section per user with a table per date.
func ExportMarkdown(data *ExportData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Workout Export - %s\n\n", data.ExportedAt.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	if len(data.Workouts) == 0 {
		sb.WriteString("No workouts recorded.\n")
		return sb.String()
	}

	grouped := make(map[string][]*models.StoredWorkout)
	for _, w := range data.Workouts {
		grouped[w.UserID] = append(grouped[w.UserID], w)
	}
	users := make([]string, 0, len(grouped))
	for u := range grouped {
		users = append(users, u)
	}
	sort.Strings(users)

	for _, u := range users {
		workouts := grouped[u]
		sort.SliceStable(workouts, func(i, j int) bool {
			if workouts[i].Date != workouts[j].Date {
				return workouts[i].Date < workouts[j].Date
			}
			return workouts[i].WorkoutID < workouts[j].WorkoutID
		})

		sb.WriteString(fmt.Sprintf("## %s\n", u))
		date := ""
		for _, w := range workouts {
			if w.Date != date {
				date = w.Date
				sb.WriteString(fmt.Sprintf("\n### %s\n\n", date))
				sb.WriteString("| Exercise | Weight | Reps | Sets | Volume |\n")
				sb.WriteString("|----------|--------|------|------|--------|\n")
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n",
				w.Exercise, w.Weight.String(), w.Reps, w.Sets, w.Volume().String()))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ImportJSON loads a JSON export into repo and returns the number of workouts written.
// Items with an existing key are replaced.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) (int, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if data.Version == "" {
		return 0, errors.New("missing export version")
	}
	return ImportData(ctx, repo, &data)
}

// ImportData writes every workout in data. Missing exercise keys are rebuilt.
func ImportData(ctx context.Context, repo Repository, data *ExportData) (int, error) {
	for _, w := range data.Workouts {
		if w != nil && w.UserIDExercise == "" {
			w.UserIDExercise = models.ExerciseKey(w.UserID, w.Exercise)
		}
	}
	if len(data.Workouts) == 0 {
		return 0, nil
	}
	if err := repo.PutWorkouts(ctx, data.Workouts); err != nil {
		return 0, fmt.Errorf("import workouts: %w", err)
	}
	return len(data.Workouts), nil
}
