// Package memory implements an in-process transport. It speaks no socket
// protocol: replies, errors and events are produced by a Handler or pushed
// by the test that owns the transport.
package memory

import (
	"context"
	"sync"

	"boscoin.io/xcb/pkg/transport"
)

// Handler answers a request. Returning nil for both leaves a non-void
// request pending until SetReply or SetError is called.
type Handler func(req *transport.Request, sequence uint64) (reply []byte, xerr []byte)

type Option func(*Transport)

func WithHandler(h Handler) Option {
	return func(o *Transport) {
		o.handler = h
	}
}

func WithFD(fd int) Option {
	return func(o *Transport) {
		o.fd = fd
	}
}

// WithMaximumRequestLength sets the limit in 4-byte units.
func WithMaximumRequestLength(n uint32) Option {
	return func(o *Transport) {
		o.maxLength = n
	}
}

// WithExtensions sets the major opcodes used to encode extension requests.
func WithExtensions(majors map[string]uint8) Option {
	return func(o *Transport) {
		for k, v := range majors {
			o.majors[k] = v
		}
	}
}

type Transport struct {
	sync.Mutex

	changed chan struct{}

	setup     []byte
	sequence  uint64
	nextID    uint32
	fd        int
	maxLength uint32
	prefetch  bool
	flushes   int
	majors    map[string]uint8
	handler   Handler

	pending  map[uint64]bool
	checked  map[uint64]bool
	replies  map[uint64][]byte
	errors   map[uint64][]byte
	events   [][]byte
	requests []transport.Request

	failure transport.ConnError
	closed  bool
}

var _ transport.Transport = (*Transport)(nil)

func New(setup []byte, opts ...Option) *Transport {
	o := &Transport{
		changed:   make(chan struct{}),
		setup:     setup,
		nextID:    0x200000,
		fd:        -1,
		maxLength: 65535,
		majors:    map[string]uint8{},
		pending:   map[uint64]bool{},
		checked:   map[uint64]bool{},
		replies:   map[uint64][]byte{},
		errors:    map[uint64][]byte{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// notify wakes every waiter. It must be called with the lock held.
func (o *Transport) notify() {
	close(o.changed)
	o.changed = make(chan struct{})
}

// await blocks until done returns true, the transport fails or ctx ends.
// done runs with the lock held.
func (o *Transport) await(ctx context.Context, done func() bool) error {
	for {
		o.Lock()
		if done() || o.failure != transport.ConnOK {
			o.Unlock()
			return nil
		}
		changed := o.changed
		o.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// SetSequence makes the next request get sequence n+1.
func (o *Transport) SetSequence(n uint64) {
	o.Lock()
	defer o.Unlock()
	o.sequence = n
}

func (o *Transport) SendRequest(req *transport.Request) uint64 {
	o.Lock()
	if o.failure != transport.ConnOK {
		o.Unlock()
		return 0
	}
	if len(req.Data) < 4 {
		o.Unlock()
		return 0
	}
	if uint32((len(req.Data)+3)/4) > o.maxLength {
		o.failure = transport.ConnRequestLengthExceeded
		o.notify()
		o.Unlock()
		return 0
	}
	if _, ok := o.majors[req.Extension]; req.Extension != "" && !ok {
		o.failure = transport.ConnExtensionNotSupported
		o.notify()
		o.Unlock()
		return 0
	}

	o.sequence++
	sequence := o.sequence

	sent := *req
	sent.Data = transport.Encode(&transport.Request{
		Extension: req.Extension,
		Opcode:    req.Opcode,
		Data:      append([]byte(nil), req.Data...),
	}, o.majors[req.Extension])
	o.requests = append(o.requests, sent)

	if !req.IsVoid {
		o.pending[sequence] = true
	}
	if req.Checked {
		o.checked[sequence] = true
	}
	handler := o.handler
	o.Unlock()

	if handler == nil {
		return sequence
	}

	reply, xerr := handler(&sent, sequence)
	switch {
	case xerr != nil:
		o.SetError(sequence, xerr)
	case reply != nil && !req.IsVoid:
		o.SetReply(sequence, reply)
	}
	return sequence
}

// SetReply answers the pending request of sequence.
func (o *Transport) SetReply(sequence uint64, reply []byte) {
	o.Lock()
	defer o.Unlock()

	o.replies[sequence] = reply
	delete(o.pending, sequence)
	o.notify()
}

// SetError fails the request of sequence. Errors of unchecked requests are
// delivered through the event queue, like a real server connection does.
func (o *Transport) SetError(sequence uint64, xerr []byte) {
	o.Lock()
	defer o.Unlock()

	delete(o.pending, sequence)
	if o.checked[sequence] {
		o.errors[sequence] = xerr
	} else {
		o.events = append(o.events, xerr)
	}
	o.notify()
}

// PushEvent queues an event.
func (o *Transport) PushEvent(event []byte) {
	o.Lock()
	defer o.Unlock()

	o.events = append(o.events, event)
	o.notify()
}

// Fail puts the transport into the error state code.
func (o *Transport) Fail(code transport.ConnError) {
	o.Lock()
	defer o.Unlock()

	o.failure = code
	o.notify()
}

// Requests returns every request sent so far, with encoded headers.
func (o *Transport) Requests() []transport.Request {
	o.Lock()
	defer o.Unlock()

	return append([]transport.Request(nil), o.requests...)
}

func (o *Transport) WaitForReply(ctx context.Context, sequence uint64) ([]byte, []byte, error) {
	var reply, xerr []byte
	err := o.await(ctx, func() bool {
		if o.pending[sequence] {
			return false
		}
		reply, xerr = o.replies[sequence], o.errors[sequence]
		delete(o.replies, sequence)
		delete(o.errors, sequence)
		delete(o.checked, sequence)
		return true
	})
	return reply, xerr, err
}

func (o *Transport) RequestCheck(ctx context.Context, sequence uint64) ([]byte, error) {
	_, xerr, err := o.WaitForReply(ctx, sequence)
	return xerr, err
}

func (o *Transport) WaitForEvent(ctx context.Context) ([]byte, error) {
	var event []byte
	err := o.await(ctx, func() bool {
		event = o.popEvent()
		return event != nil
	})
	return event, err
}

func (o *Transport) PollForEvent() []byte {
	o.Lock()
	defer o.Unlock()

	return o.popEvent()
}

func (o *Transport) popEvent() []byte {
	if len(o.events) < 1 {
		return nil
	}
	event := o.events[0]
	o.events = o.events[1:]
	return event
}

func (o *Transport) HasError() transport.ConnError {
	o.Lock()
	defer o.Unlock()

	return o.failure
}

func (o *Transport) Setup() []byte {
	return o.setup
}

func (o *Transport) FileDescriptor() int {
	return o.fd
}

func (o *Transport) MaximumRequestLength() uint32 {
	o.Lock()
	defer o.Unlock()

	return o.maxLength
}

func (o *Transport) PrefetchMaximumRequestLength() {
	o.Lock()
	defer o.Unlock()

	o.prefetch = true
}

// Prefetched reports whether PrefetchMaximumRequestLength was called.
func (o *Transport) Prefetched() bool {
	o.Lock()
	defer o.Unlock()

	return o.prefetch
}

func (o *Transport) Flush() bool {
	o.Lock()
	defer o.Unlock()

	if o.failure != transport.ConnOK {
		return false
	}
	o.flushes++
	return true
}

// Flushes returns the number of successful flushes.
func (o *Transport) Flushes() int {
	o.Lock()
	defer o.Unlock()

	return o.flushes
}

func (o *Transport) GenerateID() uint32 {
	o.Lock()
	defer o.Unlock()

	if o.failure != transport.ConnOK {
		return 0xffffffff
	}
	id := o.nextID
	o.nextID++
	return id
}

func (o *Transport) Disconnect() {
	o.Lock()
	defer o.Unlock()

	o.closed = true
	if o.failure == transport.ConnOK {
		o.failure = transport.ConnSocketError
	}
	o.notify()
}

// Closed reports whether Disconnect was called.
func (o *Transport) Closed() bool {
	o.Lock()
	defer o.Unlock()

	return o.closed
}
