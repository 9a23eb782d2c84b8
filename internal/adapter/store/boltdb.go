package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketResponses = []byte("responses")
	bucketProgress  = []byte("progress")
)

// BoltStore is the persistent response cache and progress ledger. Writes
// are transactional, so a crash mid-run never loses earlier entries.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the cache at path. An unreadable database
// is deleted and recreated empty rather than aborting the run.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	db, err := open(path)
	if err != nil {
		logger.Warn("cache unreadable, starting empty",
			zap.String("path", path), zap.Error(err))
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("failed to remove unreadable cache: %w", rmErr)
		}
		db, err = open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to recreate cache: %w", err)
		}
	}

	return &BoltStore{db: db}, nil
}

func open(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketResponses, bucketProgress} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Get returns the cached response for key.
func (s *BoltStore) Get(key string) (string, bool) {
	var val string
	var ok bool
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketResponses).Get([]byte(key)); data != nil {
			val = string(data)
			ok = true
		}
		return nil
	})
	return val, ok
}

// Set stores a response, durable before it returns.
func (s *BoltStore) Set(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), []byte(value))
	})
}

// Progress returns a copy of the ledger.
func (s *BoltStore) Progress() (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProgress).ForEach(func(k, v []byte) error {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[string(k)] = cp
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return out, nil
}

// SetProgressEntry records a completed step in the ledger.
func (s *BoltStore) SetProgressEntry(key string, payload []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProgress).Put([]byte(key), payload)
	})
}

// ClearProgress empties the ledger after a fully successful run.
func (s *BoltStore) ClearProgress() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketProgress); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketProgress)
		return err
	})
}

// Responses iterates all cached responses in key order, for inspection
// tooling.
func (s *BoltStore) Responses(fn func(key, value string) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResponses).ForEach(func(k, v []byte) error {
			return fn(string(k), string(v))
		})
	})
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
