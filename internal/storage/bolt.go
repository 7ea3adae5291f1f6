package storage

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const dataBucketName = "data"

// BoltGateway stores blobs in a single-file bbolt database.
type BoltGateway struct {
	db *bolt.DB
}

func NewBoltGateway(path string) (*BoltGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bolt.Open(path, 0o644, bolt.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dataBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create data bucket: %w", err)
	}
	return &BoltGateway{db: db}, nil
}

func (g *BoltGateway) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := g.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dataBucketName))
		if bucket == nil {
			return ErrBucketNotFound
		}
		if value := bucket.Get([]byte(key)); value != nil {
			data = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return data, data != nil, nil
}

func (g *BoltGateway) Set(key string, data []byte) error {
	err := g.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(dataBucketName))
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (g *BoltGateway) Close() error {
	return g.db.Close()
}
