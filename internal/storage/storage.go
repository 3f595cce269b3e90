package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keySessionOptions = "session_options"
	keyBookUsage       = "book_usage"
)

// SessionOptions captures the UCI option state that should survive a
// process restart: the last hash table size and NNUE eval file path set
// via "setoption", so a fresh process can be brought back up the same way
// without the caller having to resend every option.
type SessionOptions struct {
	HashSizeMB int       `json:"hash_size_mb"`
	EvalFile   string    `json:"eval_file"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultSessionOptions returns the engine's built-in option defaults.
func DefaultSessionOptions() *SessionOptions {
	return &SessionOptions{
		HashSizeMB: 64,
	}
}

// BookUsageStats tracks how often the opening book was consulted, split
// into hits (a move was returned) and misses (the position fell outside
// the book). The counters are running totals, not keyed by position, so a
// position probed again counts again.
type BookUsageStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewBookUsageStats returns empty book usage counters.
func NewBookUsageStats() *BookUsageStats {
	return &BookUsageStats{}
}

// HitRate returns the fraction of probes that returned a book move.
func (b *BookUsageStats) HitRate() float64 {
	total := b.Hits + b.Misses
	if total == 0 {
		return 0
	}
	return float64(b.Hits) / float64(total)
}

// Storage wraps BadgerDB for persisting session state across restarts.
type Storage struct {
	db *badger.DB
}

// NewStorage creates a new storage instance backed by the platform data
// directory's db subdirectory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSessionOptions persists the current UCI option state.
func (s *Storage) SaveSessionOptions(opts *SessionOptions) error {
	opts.UpdatedAt = time.Now()

	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySessionOptions), data)
	})
}

// LoadSessionOptions loads the last persisted UCI option state, returning
// the engine defaults if nothing has been saved yet.
func (s *Storage) LoadSessionOptions() (*SessionOptions, error) {
	opts := DefaultSessionOptions()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySessionOptions))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, opts)
		})
	})

	return opts, err
}

// SaveBookUsage persists opening book usage counters.
func (s *Storage) SaveBookUsage(stats *BookUsageStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyBookUsage), data)
	})
}

// LoadBookUsage loads opening book usage counters, returning empty
// counters if none have been recorded yet.
func (s *Storage) LoadBookUsage() (*BookUsageStats, error) {
	stats := NewBookUsageStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyBookUsage))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordBookProbe updates book usage counters after a probe and persists
// the result.
func (s *Storage) RecordBookProbe(hit bool) error {
	stats, err := s.LoadBookUsage()
	if err != nil {
		return err
	}

	if hit {
		stats.Hits++
	} else {
		stats.Misses++
	}

	return s.SaveBookUsage(stats)
}
