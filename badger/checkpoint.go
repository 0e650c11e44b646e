// Package badger stores crawl checkpoints in a BadgerDB key-value store.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/fwojciec/sift"
)

const checkpointPrefix = "checkpoint:"

// loggerAdapter routes badger's internal logging to slog.
type loggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*loggerAdapter)(nil)

func (a *loggerAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *loggerAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

func (a *loggerAdapter) Infof(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

func (a *loggerAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// Ensure CheckpointStore implements sift.CheckpointStore at compile time.
var _ sift.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore keeps one JSON-encoded checkpoint per crawl key.
type CheckpointStore struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens the checkpoint database in dir, creating it if needed. An
// empty dir opens an in-memory store. A nil logger silences badger.
func Open(dir string, logger *slog.Logger) (*CheckpointStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating checkpoint directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &loggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint store: %w", err)
	}
	return &CheckpointStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

// SaveCheckpoint implements sift.CheckpointStore. SavedAt is set when it
// is zero.
func (s *CheckpointStore) SaveCheckpoint(ctx context.Context, cp *sift.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cp.Key == "" {
		return sift.Errorf(sift.EINVALID, "checkpoint key required")
	}
	if cp.SavedAt.IsZero() {
		cp.SavedAt = s.now().UTC()
	}
	value, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(checkpointKey(cp.Key), value)
	})
}

// LoadCheckpoint implements sift.CheckpointStore.
func (s *CheckpointStore) LoadCheckpoint(ctx context.Context, key string) (*sift.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cp sift.Checkpoint
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(checkpointKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cp)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, sift.Errorf(sift.ENOTFOUND, "no checkpoint for %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	return &cp, nil
}

// DeleteCheckpoint implements sift.CheckpointStore.
func (s *CheckpointStore) DeleteCheckpoint(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(checkpointKey(key))
	})
}

// Keys returns the crawl keys that have a saved checkpoint.
func (s *CheckpointStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkpointPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().Key()[len(checkpointPrefix):]))
		}
		return nil
	})
	return keys, err
}

func checkpointKey(key string) []byte {
	return []byte(checkpointPrefix + key)
}
