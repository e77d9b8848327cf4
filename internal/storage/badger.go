// ABOUTME: Badger-backed Repository with hand-maintained secondary index keys.
// ABOUTME: Each write stores the item and its index entries in one transaction.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/liftlog/internal/models"
	"go.uber.org/zap"
)

// BadgerStore persists workouts in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates a badger database in dir.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return openBadger(badger.DefaultOptions(dir), logger)
}

// OpenBadgerInMemory opens a badger database that lives only in memory.
func OpenBadgerInMemory(logger *zap.Logger) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), logger)
}

func openBadger(opts badger.Options, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := badger.Open(opts.WithLogger(badgerLogger{logger.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PutWorkout stores one item with its index keys.
func (s *BadgerStore) PutWorkout(ctx context.Context, w *models.StoredWorkout) error {
	return s.PutWorkouts(ctx, []*models.StoredWorkout{w})
}

// PutWorkouts stores all items in a single transaction.
func (s *BadgerStore) PutWorkouts(ctx context.Context, ws []*models.StoredWorkout) error {
	for _, w := range ws {
		if err := checkItem(w); err != nil {
			return fmt.Errorf("put workout: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, w := range ws {
			data, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("marshal workout: %w", err)
			}
			primary := []byte(workoutKey(w.UserID, w.WorkoutID))
			if err := s.removeIndexes(txn, primary); err != nil {
				return err
			}
			if err := txn.Set(primary, data); err != nil {
				return err
			}
			for _, k := range indexKeys(w) {
				if err := txn.Set([]byte(k), primary); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put workouts: %w", err)
	}
	return nil
}

// removeIndexes drops the index keys of an item about to be replaced.
func (s *BadgerStore) removeIndexes(txn *badger.Txn, primary []byte) error {
	item, err := txn.Get(primary)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	var old models.StoredWorkout
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err != nil {
		return fmt.Errorf("unmarshal workout: %w", err)
	}
	for _, k := range indexKeys(&old) {
		if err := txn.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}

// WorkoutsByUser returns every item for a user ordered by date.
func (s *BadgerStore) WorkoutsByUser(ctx context.Context, userID string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return s.scanIndex(ctx, userDatePrefix(userID), false)
}

// WorkoutsByDate returns a user's items for one date.
func (s *BadgerStore) WorkoutsByDate(ctx context.Context, userID, date string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return s.scanIndex(ctx, dayPrefix(userID, date), false)
}

// WorkoutsByExercise returns a user's items for one exercise, newest first.
func (s *BadgerStore) WorkoutsByExercise(ctx context.Context, userID, exercise string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	return s.scanIndex(ctx, userExercisePrefix(userID, exercise), true)
}

// AllWorkouts walks the primary keys of every user.
func (s *BadgerStore) AllWorkouts(ctx context.Context) ([]*models.StoredWorkout, error) {
	results := []*models.StoredWorkout{}
	prefix := []byte(primaryPrefix())
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var w models.StoredWorkout
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &w) }); err != nil {
				return fmt.Errorf("unmarshal workout: %w", err)
			}
			results = append(results, &w)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", describePrefix(string(prefix)), err)
	}
	return results, nil
}

// scanIndex resolves every index entry under prefix to its item.
func (s *BadgerStore) scanIndex(ctx context.Context, prefix string, reverse bool) ([]*models.StoredWorkout, error) {
	results := []*models.StoredWorkout{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = reverse
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		seek := p
		if reverse {
			seek = append(append([]byte{}, p...), 0xFF)
		}
		for it.Seek(seek); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			primary, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			w, err := getWorkout(txn, primary)
			if err != nil {
				return err
			}
			if w != nil {
				results = append(results, w)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", describePrefix(prefix), err)
	}
	return results, nil
}

// getWorkout loads an item by primary key. Dangling index entries yield nil.
func getWorkout(txn *badger.Txn, primary []byte) (*models.StoredWorkout, error) {
	item, err := txn.Get(primary)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var w models.StoredWorkout
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &w) }); err != nil {
		return nil, fmt.Errorf("unmarshal workout: %w", err)
	}
	return &w, nil
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
