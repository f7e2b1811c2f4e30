package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keySettings       = "settings"
	keyStats          = "stats"
	keyAnalysisPrefix = "analysis/"
)

// Settings stores the CLI's engine preferences.
type Settings struct {
	Difficulty       string `json:"difficulty"`
	HashMB           int    `json:"hash_mb"`
	Depth            int    `json:"depth"`
	CaptureExtension int    `json:"capture_extension"`
	UseTT            bool   `json:"use_tt"`
}

// DefaultSettings returns the settings used before any are saved.
func DefaultSettings() Settings {
	return Settings{
		Difficulty:       "medium",
		HashMB:           16,
		Depth:            6,
		CaptureExtension: 1,
		UseTT:            true,
	}
}

// Analysis is a cached search result for one position. CaptureExtension
// records the extension the search ran with; results under different
// extensions are not interchangeable.
type Analysis struct {
	FEN              string        `json:"fen"`
	Move             string        `json:"move"`
	Score            int           `json:"score"`
	Depth            int           `json:"depth"`
	CaptureExtension int           `json:"capture_extension"`
	Nodes            uint64        `json:"nodes"`
	PV               []string      `json:"pv,omitempty"`
	Elapsed          time.Duration `json:"elapsed"`
	SearchedAt       time.Time     `json:"searched_at"`
}

// Stats counts analysis cache use.
type Stats struct {
	Searches  int `json:"searches"`
	CacheHits int `json:"cache_hits"`
	Stored    int `json:"stored"`
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s Stats) HitRate() float64 {
	if s.Searches == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.Searches) * 100
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault() (*Storage, error) {
	dir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// get decodes the value at key into v. found is false if the key is absent.
func (s *Storage) get(key []byte, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SaveSettings saves the engine settings.
func (s *Storage) SaveSettings(st Settings) error {
	return s.put([]byte(keySettings), st)
}

// LoadSettings loads the engine settings. It returns DefaultSettings and
// false if none were saved.
func (s *Storage) LoadSettings() (Settings, bool, error) {
	st := DefaultSettings()
	found, err := s.get([]byte(keySettings), &st)
	return st, found, err
}

func analysisKey(hash uint64) []byte {
	key := make([]byte, len(keyAnalysisPrefix)+8)
	copy(key, keyAnalysisPrefix)
	binary.BigEndian.PutUint64(key[len(keyAnalysisPrefix):], hash)
	return key
}

// SaveAnalysis stores a for the position with Zobrist key hash. An existing
// analysis of the same position and capture extension at greater depth is
// kept instead. It reports whether a was written.
func (s *Storage) SaveAnalysis(hash uint64, a Analysis) (bool, error) {
	key := analysisKey(hash)
	if a.SearchedAt.IsZero() {
		a.SearchedAt = time.Now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return false, err
	}

	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var old Analysis
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err != nil {
				return err
			}
			if old.FEN == a.FEN && old.CaptureExtension == a.CaptureExtension && old.Depth > a.Depth {
				return nil
			}
		}
		written = true
		return txn.Set(key, data)
	})
	if err == nil && written {
		err = s.updateStats(func(st *Stats) { st.Stored++ })
	}
	return written, err
}

// LookupAnalysis returns the stored analysis for the position if it was
// searched with capture extension captureExt to at least minDepth. fen
// guards against key collisions.
func (s *Storage) LookupAnalysis(hash uint64, fen string, captureExt, minDepth int) (Analysis, bool, error) {
	var a Analysis
	found, err := s.get(analysisKey(hash), &a)
	if err != nil || !found || a.FEN != fen || a.CaptureExtension != captureExt || a.Depth < minDepth {
		return Analysis{}, false, err
	}
	return a, true, nil
}

// LoadStats loads cache statistics, or zero stats if none were saved.
func (s *Storage) LoadStats() (Stats, error) {
	var st Stats
	_, err := s.get([]byte(keyStats), &st)
	return st, err
}

// RecordSearch counts one search request and whether the cache answered it.
func (s *Storage) RecordSearch(hit bool) error {
	return s.updateStats(func(st *Stats) {
		st.Searches++
		if hit {
			st.CacheHits++
		}
	})
}

func (s *Storage) updateStats(fn func(*Stats)) error {
	st, err := s.LoadStats()
	if err != nil {
		return err
	}
	fn(&st)
	return s.put([]byte(keyStats), st)
}
