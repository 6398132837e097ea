package record

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"boscoin.io/xcb/pkg/metrics"
	"boscoin.io/xcb/pkg/support/logger"
	"boscoin.io/xcb/pkg/transport"
)

type Option func(*Recorder)

func WithLogger(l *logger.Logger) Option {
	return func(o *Recorder) {
		o.log = l
	}
}

func WithMetrics(m *metrics.RecordMetrics) Option {
	return func(o *Recorder) {
		o.metrics = m
	}
}

// Recorder is a transport that stores everything passing through the
// transport it wraps. Storing never fails the wrapped operation; failures
// are logged and counted.
type Recorder struct {
	transport.Transport

	store   *Store
	session *Session
	log     *logger.Logger
	metrics *metrics.RecordMetrics

	sync.Mutex
	requests uint64
	events   uint64
}

var _ transport.Transport = (*Recorder)(nil)

// NewRecorder starts a new session for t. display is only kept for
// reference.
func NewRecorder(t transport.Transport, store *Store, display string, opts ...Option) (*Recorder, error) {
	o := &Recorder{
		Transport: t,
		store:     store,
		session: &Session{
			ID:                   uuid.New().String(),
			Display:              display,
			FileDescriptor:       t.FileDescriptor(),
			MaximumRequestLength: t.MaximumRequestLength(),
			Started:              time.Now(),
		},
		log:     logger.NewLogger("record"),
		metrics: metrics.Record,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With("session", o.session.ID)

	if err := store.PutSession(o.session); err != nil {
		return nil, err
	}
	if err := store.PutEntry(o.session.ID, &Entry{Kind: KindSetup, Data: t.Setup(), Time: time.Now()}); err != nil {
		return nil, err
	}

	o.log.Debug("msg", "recording started", "display", display)
	return o, nil
}

func (o *Recorder) Session() *Session {
	return o.session
}

func (o *Recorder) put(e *Entry) {
	e.Time = time.Now()
	if err := o.store.PutEntry(o.session.ID, e); err != nil {
		o.metrics.AddError(string(e.Kind))
		o.log.Error("msg", "failed to record", "kind", e.Kind, "sequence", e.Sequence, "error", err)
		return
	}
	o.metrics.AddEntry(string(e.Kind))
}

func (o *Recorder) next(counter *uint64) uint64 {
	o.Lock()
	defer o.Unlock()

	*counter++
	return *counter
}

func (o *Recorder) SendRequest(req *transport.Request) uint64 {
	seq := o.Transport.SendRequest(req)
	if seq == 0 {
		return seq
	}

	o.put(&Entry{
		Kind:      KindRequest,
		Index:     o.next(&o.requests),
		Sequence:  seq,
		Extension: req.Extension,
		Opcode:    req.Opcode,
		IsVoid:    req.IsVoid,
		Checked:   req.Checked,
		Data:      req.Data,
	})
	return seq
}

func (o *Recorder) WaitForReply(ctx context.Context, sequence uint64) ([]byte, []byte, error) {
	reply, xerr, err := o.Transport.WaitForReply(ctx, sequence)
	o.response(sequence, reply, xerr)
	return reply, xerr, err
}

func (o *Recorder) RequestCheck(ctx context.Context, sequence uint64) ([]byte, error) {
	xerr, err := o.Transport.RequestCheck(ctx, sequence)
	o.response(sequence, nil, xerr)
	return xerr, err
}

func (o *Recorder) response(sequence uint64, reply, xerr []byte) {
	if reply != nil {
		o.put(&Entry{Kind: KindReply, Index: sequence, Sequence: sequence, Data: reply})
	}
	if xerr != nil {
		o.put(&Entry{Kind: KindError, Index: sequence, Sequence: sequence, Data: xerr})
	}
}

func (o *Recorder) event(data []byte) {
	if data == nil {
		return
	}
	o.put(&Entry{Kind: KindEvent, Index: o.next(&o.events), Data: data})
}

func (o *Recorder) WaitForEvent(ctx context.Context) ([]byte, error) {
	data, err := o.Transport.WaitForEvent(ctx)
	o.event(data)
	return data, err
}

func (o *Recorder) PollForEvent() []byte {
	data := o.Transport.PollForEvent()
	o.event(data)
	return data
}

func (o *Recorder) Disconnect() {
	o.Transport.Disconnect()

	o.Lock()
	defer o.Unlock()
	o.log.Debug("msg", "recording stopped", "requests", o.requests, "events", o.events)
}

// Dialer records every transport its inner dialer opens.
type Dialer struct {
	transport.Dialer

	Store   *Store
	Options []Option

	// Last is the recorder of the latest connection.
	Last *Recorder
}

var _ transport.Dialer = (*Dialer)(nil)

func (o *Dialer) Connect(display transport.Display, auth *transport.AuthInfo) (transport.Transport, error) {
	t, err := o.Dialer.Connect(display, auth)
	if err != nil {
		return nil, err
	}
	return o.wrap(t, display.String())
}

func (o *Dialer) ConnectToFD(fd int, auth *transport.AuthInfo) (transport.Transport, error) {
	t, err := o.Dialer.ConnectToFD(fd, auth)
	if err != nil {
		return nil, err
	}
	return o.wrap(t, "")
}

func (o *Dialer) wrap(t transport.Transport, display string) (transport.Transport, error) {
	r, err := NewRecorder(t, o.Store, display, o.Options...)
	if err != nil {
		t.Disconnect()
		return nil, err
	}
	o.Last = r
	return r, nil
}
