// Package record keeps the traffic of a transport in a key value store and
// plays it back later.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"boscoin.io/xcb/pkg/rawdb"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("no more recorded events")
)

type Kind string

const (
	KindSetup   Kind = "setup"
	KindRequest Kind = "request"
	KindReply   Kind = "reply"
	KindError   Kind = "error"
	KindEvent   Kind = "event"
)

var Kinds = []Kind{KindSetup, KindRequest, KindReply, KindError, KindEvent}

// Session describes one recorded connection.
type Session struct {
	ID                   string    `msgpack:"id" json:"id" yaml:"id"`
	Display              string    `msgpack:"display" json:"display" yaml:"display"`
	FileDescriptor       int       `msgpack:"fd" json:"fd" yaml:"fd"`
	MaximumRequestLength uint32    `msgpack:"max_request_length" json:"max_request_length" yaml:"max_request_length"`
	Started              time.Time `msgpack:"started" json:"started" yaml:"started"`
}

// Entry is one recorded packet. Replies and errors are indexed by their
// sequence number, everything else by the order it was seen in.
type Entry struct {
	Kind      Kind      `msgpack:"kind" json:"kind" yaml:"kind"`
	Index     uint64    `msgpack:"index" json:"index" yaml:"index"`
	Sequence  uint64    `msgpack:"sequence" json:"sequence" yaml:"sequence"`
	Extension string    `msgpack:"extension" json:"extension,omitempty" yaml:"extension,omitempty"`
	Opcode    uint8     `msgpack:"opcode" json:"opcode" yaml:"opcode"`
	IsVoid    bool      `msgpack:"is_void" json:"is_void" yaml:"is_void"`
	Checked   bool      `msgpack:"checked" json:"checked" yaml:"checked"`
	Data      []byte    `msgpack:"data" json:"data" yaml:"data"`
	Time      time.Time `msgpack:"time" json:"time" yaml:"time"`
}

const (
	sessionPrefix = "sessions/"
	entryPrefix   = "session/"
)

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

func kindPrefix(id string, kind Kind) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/", entryPrefix, id, kind))
}

func entryKey(id string, kind Kind, index uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%020d", entryPrefix, id, kind, index))
}

func Serialize(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func Deserialize(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

type Store struct {
	db rawdb.Database
}

func NewStore(db rawdb.Database) *Store {
	return &Store{db: db}
}

func (o *Store) PutSession(s *Session) error {
	b, err := Serialize(s)
	if err != nil {
		return err
	}
	return o.db.Put(sessionKey(s.ID), b)
}

func (o *Store) Session(id string) (*Session, error) {
	b, err := o.db.Get(sessionKey(id))
	if err == rawdb.ErrNotFound {
		return nil, errors.Wrap(ErrSessionNotFound, id)
	} else if err != nil {
		return nil, err
	}

	s := &Session{}
	if err := Deserialize(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Sessions lists the recorded sessions ordered by id.
func (o *Store) Sessions() ([]*Session, error) {
	var (
		sessions []*Session
		derr     error
	)
	err := o.db.Iterate([]byte(sessionPrefix), func(key, value []byte) bool {
		s := &Session{}
		if derr = Deserialize(value, s); derr != nil {
			derr = errors.Wrapf(derr, "session %s", strings.TrimPrefix(string(key), sessionPrefix))
			return false
		}
		sessions = append(sessions, s)
		return true
	})
	if err != nil {
		return nil, err
	}
	return sessions, derr
}

func (o *Store) PutEntry(session string, e *Entry) error {
	b, err := Serialize(e)
	if err != nil {
		return err
	}
	return o.db.Put(entryKey(session, e.Kind, e.Index), b)
}

// Entries returns the entries of one kind in index order.
func (o *Store) Entries(session string, kind Kind) ([]*Entry, error) {
	var (
		entries []*Entry
		derr    error
	)
	err := o.db.Iterate(kindPrefix(session, kind), func(key, value []byte) bool {
		e := &Entry{}
		if derr = Deserialize(value, e); derr != nil {
			return false
		}
		entries = append(entries, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, derr
}

// Setup returns the setup bytes recorded for session.
func (o *Store) Setup(session string) ([]byte, error) {
	entries, err := o.Entries(session, KindSetup)
	if err != nil {
		return nil, err
	}
	if len(entries) < 1 {
		return nil, errors.Wrapf(ErrSessionNotFound, "no setup for %s", session)
	}
	return entries[0].Data, nil
}

// Delete removes a session and all of its entries.
func (o *Store) Delete(session string) error {
	if _, err := o.Session(session); err != nil {
		return err
	}

	var keys [][]byte
	err := o.db.Iterate([]byte(entryPrefix+session+"/"), func(key, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return err
	}
	keys = append(keys, sessionKey(session))

	for _, key := range keys {
		if err := o.db.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
