package rawdb

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelDb(t *testing.T) {
	name, err := ioutil.TempDir("", "xcb-ldb")
	require.NoError(t, err)
	defer os.RemoveAll(name)

	db, err := NewLevelDb(name)
	require.NoError(t, err)
	defer db.Close()

	err = db.Put([]byte{1, 2, 3, 4}[:], []byte{4, 3, 2, 1}[:])
	require.NoError(t, err)
	bytes, err := db.Get([]byte{1, 2, 3, 4}[:])
	require.NoError(t, err)

	assert.Equal(t, []byte{4, 3, 2, 1}, bytes)
}

func testDatabase(t *testing.T, db Database) {
	for _, k := range []string{"b/2", "a/1", "b/1", "b/10", "c"} {
		require.NoError(t, db.Put([]byte(k), []byte("v:"+k)))
	}

	ok, err := db.Has([]byte("a/1"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = db.Get([]byte("missing"))
	assert.Equal(t, ErrNotFound, err)

	var keys []string
	err = db.Iterate([]byte("b/"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		assert.Equal(t, "v:"+string(k), string(v))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b/1", "b/10", "b/2"}, keys)

	keys = nil
	db.Iterate(nil, func(k, v []byte) bool {
		keys = append(keys, string(k))
		return len(keys) < 2
	})
	assert.Equal(t, []string{"a/1", "b/1"}, keys)

	require.NoError(t, db.Delete([]byte("c")))
	ok, _ = db.Has([]byte("c"))
	assert.False(t, ok)

	assert.NoError(t, db.Close())
}

func TestMemoryDb(t *testing.T) {
	testDatabase(t, NewMemoryDb())
}

func TestMemoryLevelDb(t *testing.T) {
	db, err := NewMemoryLevelDb()
	require.NoError(t, err)
	testDatabase(t, db)
}
