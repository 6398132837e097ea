package rawdb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDb struct {
	db *leveldb.DB
}

func NewLevelDb(path string) (*LevelDb, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDb{
		db: db,
	}, nil
}

// NewMemoryLevelDb opens a leveldb backed by memory storage.
func NewMemoryLevelDb() (*LevelDb, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return &LevelDb{
		db: db,
	}, nil
}

func (o *LevelDb) Put(key []byte, value []byte) error {
	return o.db.Put(key, value, nil)
}

func (o *LevelDb) Has(key []byte) (bool, error) {
	return o.db.Has(key, nil)
}

func (o *LevelDb) Get(key []byte) ([]byte, error) {
	dat, err := o.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return dat, nil
}

func (o *LevelDb) Delete(key []byte) error {
	return o.db.Delete(key, nil)
}

func (o *LevelDb) NewIterator(prefix []byte) iterator.Iterator {
	return o.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (o *LevelDb) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	it := o.NewIterator(prefix)
	defer it.Release()

	for it.Next() {
		// the iterator reuses its buffers
		key := append([]byte(nil), it.Key()...)
		value := append([]byte(nil), it.Value()...)
		if !fn(key, value) {
			break
		}
	}
	return it.Error()
}

func (o *LevelDb) Close() error {
	return o.db.Close()
}
