// ABOUTME: Charm KV backed Repository that syncs workouts through Charm Cloud.
// ABOUTME: Uses the shared key layout and scans index keys by prefix.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/liftlog/internal/models"
)

// ErrReadOnly is returned for writes while another process holds the KV lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// CharmStore persists workouts in a Charm KV database.
type CharmStore struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
}

// OpenCharm opens the named KV database. A non-empty host overrides CHARM_HOST.
func OpenCharm(dbName, host string) (*CharmStore, error) {
	if host != "" {
		if err := os.Setenv("CHARM_HOST", host); err != nil {
			return nil, fmt.Errorf("set charm host: %w", err)
		}
	}

	db, err := kv.OpenWithDefaultsFallback(dbName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}

	return &CharmStore{kv: db, autoSync: true}, nil
}

// Close closes the KV database connection.
func (c *CharmStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// SetAutoSync enables or disables sync after writes.
func (c *CharmStore) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// Sync synchronizes local state with Charm Cloud.
func (c *CharmStore) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// ID returns the Charm user id of the linked account.
func (c *CharmStore) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset drops local data and rebuilds it from Charm Cloud.
func (c *CharmStore) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// PutWorkout stores one item and its index keys.
func (c *CharmStore) PutWorkout(ctx context.Context, w *models.StoredWorkout) error {
	return c.PutWorkouts(ctx, []*models.StoredWorkout{w})
}

// PutWorkouts stores items one key at a time and syncs once at the end.
// Charm KV has no multi-key transaction, so a failure can leave a partial batch.
func (c *CharmStore) PutWorkouts(ctx context.Context, ws []*models.StoredWorkout) error {
	for _, w := range ws {
		if err := checkItem(w); err != nil {
			return fmt.Errorf("put workout: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	for _, w := range ws {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.putOne(w); err != nil {
			return fmt.Errorf("put workout %s: %w", w.WorkoutID, err)
		}
	}

	if c.autoSync {
		_ = c.kv.Sync()
	}
	return nil
}

func (c *CharmStore) putOne(w *models.StoredWorkout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workout: %w", err)
	}
	primary := []byte(workoutKey(w.UserID, w.WorkoutID))

	if old, err := c.kv.Get(primary); err == nil {
		var prev models.StoredWorkout
		if json.Unmarshal(old, &prev) == nil {
			for _, k := range indexKeys(&prev) {
				if err := c.kv.Delete([]byte(k)); err != nil {
					return err
				}
			}
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	if err := c.kv.Set(primary, data); err != nil {
		return err
	}
	for _, k := range indexKeys(w) {
		if err := c.kv.Set([]byte(k), primary); err != nil {
			return err
		}
	}
	return nil
}

// WorkoutsByUser returns every item for a user ordered by date.
func (c *CharmStore) WorkoutsByUser(ctx context.Context, userID string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return c.scanIndex(ctx, userDatePrefix(userID), false)
}

// WorkoutsByDate returns a user's items for one date.
func (c *CharmStore) WorkoutsByDate(ctx context.Context, userID, date string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return c.scanIndex(ctx, dayPrefix(userID, date), false)
}

// WorkoutsByExercise returns a user's items for one exercise, newest first.
func (c *CharmStore) WorkoutsByExercise(ctx context.Context, userID, exercise string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return c.scanIndex(ctx, userExercisePrefix(userID, exercise), true)
}

// AllWorkouts decodes every primary key in key order.
func (c *CharmStore) AllWorkouts(ctx context.Context) ([]*models.StoredWorkout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.matchKeys(primaryPrefix(), false)
	if err != nil {
		return nil, err
	}

	results := []*models.StoredWorkout{}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := c.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", describePrefix(string(key)), err)
		}
		var w models.StoredWorkout
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("unmarshal workout: %w", err)
		}
		results = append(results, &w)
	}
	return results, nil
}

// matchKeys lists the keys under prefix in byte order. Callers hold the lock.
func (c *CharmStore) matchKeys(prefix string, reverse bool) ([][]byte, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	prefixBytes := []byte(prefix)
	var matched [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			matched = append(matched, key)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if reverse {
			return bytes.Compare(matched[i], matched[j]) > 0
		}
		return bytes.Compare(matched[i], matched[j]) < 0
	})
	return matched, nil
}

func (c *CharmStore) scanIndex(ctx context.Context, prefix string, reverse bool) ([]*models.StoredWorkout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched, err := c.matchKeys(prefix, reverse)
	if err != nil {
		return nil, err
	}

	results := []*models.StoredWorkout{}
	for _, key := range matched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		primary, err := c.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", describePrefix(prefix), err)
		}
		data, err := c.kv.Get(primary)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", describePrefix(prefix), err)
		}
		var w models.StoredWorkout
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("unmarshal workout: %w", err)
		}
		results = append(results, &w)
	}
	return results, nil
}
