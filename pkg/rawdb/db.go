package rawdb

import (
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("key not found")

// Database is the key value store recorded sessions are kept in. Keys are
// ordered bytewise; Iterate visits them in that order.
type Database interface {
	Get(key []byte) ([]byte, error)

	Has(key []byte) (bool, error)

	Put(key []byte, value []byte) error

	Delete(key []byte) error

	// Iterate calls fn for every key starting with prefix until fn returns
	// false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error

	Close() error
}
