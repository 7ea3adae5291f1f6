package storage

import "errors"

// Gateway is the key-value blob store the form store persists through. Get
// reports absence of a key via the second return value, not an error.
type Gateway interface {
	Get(key string) (data []byte, ok bool, err error)
	Set(key string, data []byte) error
}

var ErrBucketNotFound = errors.New("data bucket not found")
