// Package storage persists analysis results in a BadgerDB key-value
// store, keyed by FEN, so batch analysis can resume without redoing
// positions already searched deep enough.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const analysisPrefix = "analysis:"

// Analysis is one stored search result for a position.
type Analysis struct {
	FEN        string    `json:"fen"`
	Depth      int       `json:"depth"`
	Score      int       `json:"score"`
	BestMove   string    `json:"best_move"`
	PV         []string  `json:"pv,omitempty"`
	Nodes      uint64    `json:"nodes"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Store wraps a BadgerDB instance holding analysis records.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*Store, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func analysisKey(fen string) []byte {
	return []byte(analysisPrefix + fen)
}

// Put saves an analysis record, stamping it with the current time and
// overwriting any previous record for the same FEN.
func (s *Store) Put(a Analysis) error {
	a.AnalyzedAt = time.Now()

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", a.FEN, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(a.FEN), data)
	})
}

// Get returns the stored analysis for fen. ok is false when the
// position has never been analyzed.
func (s *Store) Get(fen string) (Analysis, bool, error) {
	var a Analysis
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(fen))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})
	if err != nil {
		return Analysis{}, false, fmt.Errorf("storage: get %q: %w", fen, err)
	}
	return a, found, nil
}

// HasAtDepth reports whether fen already has a record at least depth deep.
func (s *Store) HasAtDepth(fen string, depth int) (bool, error) {
	a, ok, err := s.Get(fen)
	if err != nil || !ok {
		return false, err
	}
	return a.Depth >= depth, nil
}

// Each calls fn for every stored record. Returning an error from fn
// stops the iteration.
func (s *Store) Each(fn func(Analysis) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(analysisPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var a Analysis
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}
			if err := fn(a); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored analysis records.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.Each(func(Analysis) error {
		n++
		return nil
	})
	return n, err
}
