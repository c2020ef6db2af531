package conformance

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketFixtures = []byte("fixtures_by_name")

// Store is an embedded bbolt database of named Fixtures, the same storage
// choice the node's chain database makes for its own golden data.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if absent) a fixture database at path.
func OpenStore(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFixtures)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucketFixtures, err)
	}
	return &Store{db: bdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists f under its own Name, overwriting any existing fixture with
// the same name.
func (s *Store) Put(f Fixture) error {
	buf, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal fixture %s: %w", f.Name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).Put([]byte(f.Name), buf)
	})
}

// Get loads the fixture stored under name.
func (s *Store) Get(name string) (Fixture, bool, error) {
	var f Fixture
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFixtures).Get([]byte(name))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &f)
	})
	if err != nil {
		return Fixture{}, false, fmt.Errorf("get fixture %s: %w", name, err)
	}
	return f, found, nil
}

// All loads every fixture in the store, in bucket iteration order.
func (s *Store) All() ([]Fixture, error) {
	var out []Fixture
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).ForEach(func(_, v []byte) error {
			var f Fixture
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load all fixtures: %w", err)
	}
	return out, nil
}
