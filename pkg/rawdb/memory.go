package rawdb

import (
	"sort"
	"strings"
	"sync"
)

type MemoryDb struct {
	sync.RWMutex
	db map[string][]byte
}

func NewMemoryDb() *MemoryDb {
	return &MemoryDb{
		db: make(map[string][]byte),
	}
}

func (o *MemoryDb) Put(key []byte, value []byte) error {
	o.Lock()
	defer o.Unlock()

	o.db[string(key)] = append([]byte(nil), value...)
	return nil
}

func (o *MemoryDb) Has(key []byte) (bool, error) {
	o.RLock()
	defer o.RUnlock()

	_, ok := o.db[string(key)]
	return ok, nil
}

func (o *MemoryDb) Get(key []byte) ([]byte, error) {
	o.RLock()
	defer o.RUnlock()

	if v, ok := o.db[string(key)]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (o *MemoryDb) Delete(key []byte) error {
	o.Lock()
	defer o.Unlock()

	delete(o.db, string(key))
	return nil
}

func (o *MemoryDb) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	o.RLock()
	var keys []string
	for k := range o.db {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = o.db[k]
	}
	o.RUnlock()

	for i, k := range keys {
		if !fn([]byte(k), values[i]) {
			break
		}
	}
	return nil
}

func (o *MemoryDb) Close() error {
	return nil
}
