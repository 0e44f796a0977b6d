package storage

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	MetaBucket  = []byte("meta")  // Format version, timestamps
	LocalBucket = []byte("local") // Origin-scoped key/value items
)

// Meta keys
var (
	MetaVersion  = []byte("version")
	MetaCreated  = []byte("created")
	MetaModified = []byte("modified")
)

var ErrNotInitialized = errors.New("storage not initialized")

// Storage provides a BBolt-backed string key/value medium
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a store file and makes sure its buckets exist
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the file backing the store
func (s *Storage) Path() string {
	return s.db.Path()
}

func (s *Storage) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{MetaBucket, LocalBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(MetaBucket)
		if meta.Get(MetaVersion) != nil {
			return nil
		}
		if err := meta.Put(MetaVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := meta.Put(MetaCreated, created); err != nil {
			return err
		}
		return meta.Put(MetaModified, created)
	})
}

// Get returns the value stored under key and whether it was present
func (s *Storage) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		local := tx.Bucket(LocalBucket)
		if local == nil {
			return ErrNotInitialized
		}
		data := local.Get([]byte(key))
		if data == nil {
			return nil
		}
		// string() copies; the slice is only valid during the transaction
		value, found = string(data), true
		return nil
	})
	return value, found, err
}

// Set stores value under key, replacing any previous value
func (s *Storage) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		local := tx.Bucket(LocalBucket)
		if local == nil {
			return ErrNotInitialized
		}
		if err := local.Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Storage) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		local := tx.Bucket(LocalBucket)
		if local == nil {
			return ErrNotInitialized
		}
		if err := local.Delete([]byte(key)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Keys returns all stored keys in lexical order
func (s *Storage) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		local := tx.Bucket(LocalBucket)
		if local == nil {
			return nil
		}
		return local.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	sort.Strings(keys)
	return keys, err
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	return s.metaTime(MetaModified)
}

// GetCreated retrieves the creation timestamp
func (s *Storage) GetCreated() (time.Time, error) {
	return s.metaTime(MetaCreated)
}

func (s *Storage) metaTime(key []byte) (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(MetaBucket)
		if meta == nil {
			return ErrNotInitialized
		}
		data := meta.Get(key)
		if data == nil {
			return fmt.Errorf("%s not found", key)
		}
		return t.UnmarshalBinary(data)
	})
	return t, err
}

func touch(tx *bolt.Tx) error {
	meta := tx.Bucket(MetaBucket)
	if meta == nil {
		return nil
	}
	modified, _ := time.Now().MarshalBinary()
	return meta.Put(MetaModified, modified)
}

// Compact creates a compacted copy of the database, removing unused space.
// Removed items and rewritten blobs leave free pages behind.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
