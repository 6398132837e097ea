package xcb

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/metrics"
	"boscoin.io/xcb/pkg/support/logger"
	"boscoin.io/xcb/pkg/transport"
	"boscoin.io/xcb/pkg/wire"
)

type Option func(*Connection)

func WithLogger(l *logger.Logger) Option {
	return func(o *Connection) {
		o.log = l
	}
}

func WithMetrics(m *metrics.ConnectionMetrics) Option {
	return func(o *Connection) {
		o.metrics = m
	}
}

func WithExtensionCacheSize(n int) Option {
	return func(o *Connection) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

func withPreferredScreen(n int) Option {
	return func(o *Connection) {
		o.prefScreen = n
	}
}

// Connection dispatches requests, replies and events between the typed
// protocol modules and a transport. A Connection is safe for concurrent
// use when its transport is.
type Connection struct {
	lock      sync.RWMutex
	transport transport.Transport

	registry   *Registry
	log        *logger.Logger
	metrics    *metrics.ConnectionMetrics
	cacheSize  int
	prefScreen int

	coreExt *Extension
	core    interface{}
	setup   wire.Struct

	extensions *lru.Cache

	rangesLock sync.RWMutex
	ranges     []extensionRange
}

// Connect opens a transport with dialer as config describes and sets up a
// connection over it.
func Connect(config *Config, dialer transport.Dialer, registry *Registry, opts ...Option) (*Connection, error) {
	if !registry.CoreRegistered() {
		return nil, ErrUnconfiguredDispatch
	}

	auth, err := config.authInfo()
	if err != nil {
		return nil, err
	}

	var t transport.Transport
	screen := 0
	if config.Fd > 0 {
		t, err = dialer.ConnectToFD(config.Fd, auth)
	} else {
		display, perr := transport.ParseDisplay(config.Display)
		if perr != nil {
			return nil, &ConnectionError{Code: transport.ConnDisplayParseError}
		}
		screen = display.Screen
		t, err = dialer.Connect(display, auth)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect")
	}

	opts = append([]Option{
		withPreferredScreen(screen),
		WithExtensionCacheSize(config.ExtensionCacheSize),
	}, opts...)

	conn, err := NewConnection(t, registry, opts...)
	if err != nil {
		// the caller never sees the transport dialed here
		t.Disconnect()
		return nil, err
	}
	return conn, nil
}

// NewConnection sets up a connection over an open transport. The setup
// reply is decoded before anything else is sent.
func NewConnection(t transport.Transport, registry *Registry, opts ...Option) (*Connection, error) {
	core, _, ok := registry.coreBinding()
	if !ok {
		return nil, ErrUnconfiguredDispatch
	}

	o := &Connection{
		transport: t,
		registry:  registry,
		log:       logger.NewLogger("conn"),
		metrics:   metrics.Connection,
		cacheSize: DefaultExtensionCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	cache, err := lru.New(o.cacheSize)
	if err != nil {
		return nil, err
	}
	o.extensions = cache

	o.coreExt = newExtension(o, nil)
	o.core = core.factory(o.coreExt)

	if o.setup, err = o.GetSetup(); err != nil {
		return nil, err
	}

	o.log.Debug("msg", "connected", "screen", o.prefScreen, "fd", t.FileDescriptor())
	return o, nil
}

// valid returns the transport when the connection is usable.
func (o *Connection) valid() (transport.Transport, error) {
	o.lock.RLock()
	t := o.transport
	o.lock.RUnlock()

	if t == nil {
		return nil, ErrInvalidConnection
	}
	if code := t.HasError(); code != transport.ConnOK {
		return nil, &ConnectionError{Code: code}
	}
	return t, nil
}

// invalid reports why the connection cannot be used, nil if it can.
func (o *Connection) invalid() error {
	_, err := o.valid()
	return err
}

// ensureConnected runs f between two connection checks. A failure of the
// second check wins over the error of f: whatever f saw was caused by the
// broken connection.
func (o *Connection) ensureConnected(f func(t transport.Transport) error) error {
	t, err := o.valid()
	if err != nil {
		return err
	}

	ferr := f(t)
	if err := o.invalid(); err != nil {
		return err
	}
	return ferr
}

// GetSetup decodes the setup the server sent when the connection was
// established.
func (o *Connection) GetSetup() (wire.Struct, error) {
	_, decode, ok := o.registry.coreBinding()
	if !ok {
		return nil, ErrUnconfiguredDispatch
	}

	var setup wire.Struct
	err := o.ensureConnected(func(t transport.Transport) error {
		raw := t.Setup()
		if len(raw) < 8 {
			return errors.Wrapf(ErrMalformedResponse, "setup is %d bytes", len(raw))
		}
		size := 8 + 4*int(wire.Order.Uint16(raw[6:8]))
		if len(raw) < size {
			return errors.Wrapf(ErrMalformedResponse, "setup is %d bytes, header says %d", len(raw), size)
		}

		var err error
		setup, err = decode(raw[:size])
		return err
	})
	return setup, err
}

// Setup returns the setup decoded when the connection was made.
func (o *Connection) Setup() wire.Struct {
	return o.setup
}

// Core returns the request API of the core protocol.
func (o *Connection) Core() interface{} {
	return o.core
}

func (o *Connection) Registry() *Registry {
	return o.registry
}

func (o *Connection) PreferredScreen() int {
	return o.prefScreen
}

// Ext returns the request API of a registered extension.
func (o *Connection) Ext(key ExtensionKey) (interface{}, error) {
	b, ok := o.registry.extension(key)
	if !ok {
		return nil, errors.Wrap(ErrExtensionNotRegistered, key.Name)
	}
	return b.factory(newExtension(o, &key)), nil
}

// SendRequest hands a request to the transport and returns its sequence
// number.
func (o *Connection) SendRequest(req *transport.Request) (uint64, error) {
	if len(req.Data) < wire.RequestHeaderSize {
		return 0, ErrInvalidRequest
	}

	var sequence uint64
	err := o.ensureConnected(func(t transport.Transport) error {
		sequence = t.SendRequest(req)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sequence == 0 {
		return 0, errors.Errorf("request %d of %q was not sent", req.Opcode, req.Extension)
	}

	o.metrics.AddRequest(req.Extension, req.Checked)
	o.log.Debug(
		"msg", "sent request",
		"extension", req.Extension,
		"opcode", req.Opcode,
		"sequence", sequence,
		"checked", req.Checked,
	)
	return sequence, nil
}

// WaitForReply blocks until the reply of sequence arrives and returns
// exactly the bytes of the reply. A server error is returned as Error.
func (o *Connection) WaitForReply(ctx context.Context, sequence uint64) ([]byte, error) {
	var out []byte
	begin := time.Now()
	err := o.ensureConnected(func(t transport.Transport) error {
		reply, xerr, err := t.WaitForReply(ctx, sequence)
		o.metrics.ObserveWait(begin, "reply")
		if err != nil {
			return err
		}
		if xerr != nil {
			return o.decodeError(xerr)
		}
		if reply == nil {
			return &BadSequenceError{Sequence: sequence}
		}

		header, err := wire.PeekReply(reply)
		if err != nil {
			return errors.Wrap(ErrMalformedResponse, err.Error())
		}
		if len(reply) < header.Size() {
			return errors.Wrapf(ErrMalformedResponse, "reply of sequence %d is %d bytes, header says %d", sequence, len(reply), header.Size())
		}
		out = reply[:header.Size()]
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.metrics.AddReply("")
	return out, nil
}

// RequestCheck blocks until the checked void request of sequence has been
// processed and returns its error, if any.
func (o *Connection) RequestCheck(ctx context.Context, sequence uint64) error {
	begin := time.Now()
	return o.ensureConnected(func(t transport.Transport) error {
		xerr, err := t.RequestCheck(ctx, sequence)
		o.metrics.ObserveWait(begin, "check")
		if err != nil {
			return err
		}
		if xerr != nil {
			return o.decodeError(xerr)
		}
		return nil
	})
}

// WaitForEvent blocks until an event arrives and returns it decoded. An
// error delivered through the event queue is returned as Error.
func (o *Connection) WaitForEvent(ctx context.Context) (Event, error) {
	var event Event
	begin := time.Now()
	err := o.ensureConnected(func(t transport.Transport) error {
		data, err := t.WaitForEvent(ctx)
		o.metrics.ObserveWait(begin, "event")
		if err != nil {
			return err
		}
		if data == nil {
			return errors.Wrap(ErrMalformedResponse, "empty event")
		}

		event, err = o.Hoist(data)
		return err
	})
	return event, err
}

// PollForEvent returns the next queued event without blocking. Both
// results are nil when there is none.
func (o *Connection) PollForEvent() (Event, error) {
	var event Event
	err := o.ensureConnected(func(t transport.Transport) error {
		data := t.PollForEvent()
		if data == nil {
			return nil
		}

		var err error
		event, err = o.Hoist(data)
		return err
	})
	return event, err
}

// HasError returns the error state of the transport. Unlike the other
// operations it does not fail on a broken connection, only on one that
// was disconnected.
func (o *Connection) HasError() (transport.ConnError, error) {
	o.lock.RLock()
	t := o.transport
	o.lock.RUnlock()

	if t == nil {
		return transport.ConnOK, ErrInvalidConnection
	}
	return t.HasError(), nil
}

func (o *Connection) FileDescriptor() (int, error) {
	var fd int
	err := o.ensureConnected(func(t transport.Transport) error {
		fd = t.FileDescriptor()
		return nil
	})
	return fd, err
}

// MaximumRequestLength returns the largest request the server accepts, in
// 4-byte units.
func (o *Connection) MaximumRequestLength() (uint32, error) {
	var n uint32
	err := o.ensureConnected(func(t transport.Transport) error {
		n = t.MaximumRequestLength()
		return nil
	})
	return n, err
}

func (o *Connection) PrefetchMaximumRequestLength() error {
	return o.ensureConnected(func(t transport.Transport) error {
		t.PrefetchMaximumRequestLength()
		return nil
	})
}

func (o *Connection) Flush() (bool, error) {
	var ok bool
	err := o.ensureConnected(func(t transport.Transport) error {
		ok = t.Flush()
		return nil
	})
	return ok, err
}

// GenerateID allocates a resource id.
func (o *Connection) GenerateID() (uint32, error) {
	var id uint32
	err := o.ensureConnected(func(t transport.Transport) error {
		id = t.GenerateID()
		return nil
	})
	return id, err
}

// Disconnect closes the transport. Every later operation fails with
// ErrInvalidConnection. A connection that had already failed is closed
// too, and its failure is returned.
func (o *Connection) Disconnect() error {
	err := o.invalid()
	if err == ErrInvalidConnection {
		return err
	}

	o.lock.Lock()
	t := o.transport
	o.transport = nil
	o.lock.Unlock()

	if t != nil {
		t.Disconnect()
	}
	o.log.Debug("msg", "disconnected", "error", err)
	return err
}
