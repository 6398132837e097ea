package record

import (
	"context"
	"sync"

	"boscoin.io/xcb/pkg/transport"
)

// Player is a transport answering from a recorded session. Requests get
// the sequence numbers they were recorded with, in the order they were
// recorded; requests beyond the recording continue the count. Recorded
// events are queued from the start.
type Player struct {
	sync.Mutex

	session  *Session
	setup    []byte
	requests []*Entry
	replies  map[uint64][]byte
	errors   map[uint64][]byte
	events   [][]byte

	sent     int
	sequence uint64
	nextID   uint32
	failure  transport.ConnError
}

var _ transport.Transport = (*Player)(nil)

func NewPlayer(store *Store, id string) (*Player, error) {
	session, err := store.Session(id)
	if err != nil {
		return nil, err
	}
	setup, err := store.Setup(id)
	if err != nil {
		return nil, err
	}

	o := &Player{
		session: session,
		setup:   setup,
		replies: map[uint64][]byte{},
		errors:  map[uint64][]byte{},
		nextID:  0x200000,
	}

	if o.requests, err = store.Entries(id, KindRequest); err != nil {
		return nil, err
	}
	replies, err := store.Entries(id, KindReply)
	if err != nil {
		return nil, err
	}
	for _, e := range replies {
		o.replies[e.Sequence] = e.Data
	}
	errs, err := store.Entries(id, KindError)
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		o.errors[e.Sequence] = e.Data
	}
	events, err := store.Entries(id, KindEvent)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		o.events = append(o.events, e.Data)
	}

	return o, nil
}

func (o *Player) Session() *Session {
	return o.session
}

func (o *Player) SendRequest(req *transport.Request) uint64 {
	o.Lock()
	defer o.Unlock()

	if o.failure != transport.ConnOK || len(req.Data) < 4 {
		return 0
	}

	if o.sent < len(o.requests) {
		o.sequence = o.requests[o.sent].Sequence
	} else {
		o.sequence++
	}
	o.sent++
	return o.sequence
}

func (o *Player) WaitForReply(_ context.Context, sequence uint64) ([]byte, []byte, error) {
	o.Lock()
	defer o.Unlock()

	if o.failure != transport.ConnOK {
		return nil, nil, nil
	}

	reply, xerr := o.replies[sequence], o.errors[sequence]
	delete(o.replies, sequence)
	delete(o.errors, sequence)
	return reply, xerr, nil
}

func (o *Player) RequestCheck(ctx context.Context, sequence uint64) ([]byte, error) {
	_, xerr, err := o.WaitForReply(ctx, sequence)
	return xerr, err
}

func (o *Player) WaitForEvent(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data := o.PollForEvent(); data != nil {
		return data, nil
	}
	return nil, ErrSessionEnded
}

func (o *Player) PollForEvent() []byte {
	o.Lock()
	defer o.Unlock()

	if len(o.events) < 1 {
		return nil
	}
	data := o.events[0]
	o.events = o.events[1:]
	return data
}

func (o *Player) HasError() transport.ConnError {
	o.Lock()
	defer o.Unlock()

	return o.failure
}

func (o *Player) Setup() []byte {
	return o.setup
}

func (o *Player) FileDescriptor() int {
	return o.session.FileDescriptor
}

func (o *Player) MaximumRequestLength() uint32 {
	return o.session.MaximumRequestLength
}

func (o *Player) PrefetchMaximumRequestLength() {}

func (o *Player) Flush() bool {
	return o.HasError() == transport.ConnOK
}

func (o *Player) GenerateID() uint32 {
	o.Lock()
	defer o.Unlock()

	if o.failure != transport.ConnOK {
		return 0xffffffff
	}
	id := o.nextID
	o.nextID++
	return id
}

func (o *Player) Disconnect() {
	o.Lock()
	defer o.Unlock()

	if o.failure == transport.ConnOK {
		o.failure = transport.ConnSocketError
	}
}
