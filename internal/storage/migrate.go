// ABOUTME: Data migration between workout storage backends.
// ABOUTME: Copies every user's workouts from source to destination in bounded batches.

package storage

import (
	"context"
	"fmt"
)

// migrateBatchSize keeps each destination write well inside badger's transaction limit.
const migrateBatchSize = 500

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users    int
	Workouts int
}

// MigrateData copies all workouts from src to dst. Ids are preserved, so
// rerunning a migration replaces rather than duplicates.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	workouts, err := src.AllWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source workouts: %w", err)
	}

	summary := &MigrateSummary{}
	users := make(map[string]bool)
	for start := 0; start < len(workouts); start += migrateBatchSize {
		end := min(start+migrateBatchSize, len(workouts))
		if err := dst.PutWorkouts(ctx, workouts[start:end]); err != nil {
			return nil, fmt.Errorf("copy workouts %d-%d: %w", start, end-1, err)
		}
		for _, w := range workouts[start:end] {
			users[w.UserID] = true
		}
		summary.Workouts += end - start
	}
	summary.Users = len(users)

	return summary, nil
}

// IsEmpty reports whether repo holds no workouts at all.
func IsEmpty(ctx context.Context, repo Repository) (bool, error) {
	workouts, err := repo.AllWorkouts(ctx)
	if err != nil {
		return false, err
	}
	return len(workouts) == 0, nil
}
