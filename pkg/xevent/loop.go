// Package xevent pumps the event queue of a connection and hands every
// event to the handlers registered for its name.
package xevent

import (
	"context"

	observable "github.com/GianlucaGuarini/go-observable"
	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/support/logger"
	"boscoin.io/xcb/pkg/xcb"
)

const (
	// AllEvents is triggered for every event, after the handlers of the
	// event's own name.
	AllEvents = "event"
	// ServerError is triggered for server errors delivered through the
	// event queue.
	ServerError = "error"
)

type Loop struct {
	conn       *xcb.Connection
	observable *observable.Observable
	log        *logger.Logger
}

func NewLoop(conn *xcb.Connection) *Loop {
	return &Loop{
		conn:       conn,
		observable: observable.New(),
		log:        logger.NewLogger("xevent"),
	}
}

// On registers fn for events named name, see xcb.EventName.
func (o *Loop) On(name string, fn func(xcb.Event)) {
	o.observable.On(name, fn)
}

// OnError registers fn for server errors read from the event queue.
func (o *Loop) OnError(fn func(xcb.Error)) {
	o.observable.On(ServerError, fn)
}

// Off removes every handler of name.
func (o *Loop) Off(name string) {
	o.observable.Off(name)
}

func (o *Loop) Dispatch(e xcb.Event) {
	o.observable.Trigger(xcb.EventName(e), e)
	o.observable.Trigger(AllEvents, e)
}

// handle dispatches the outcome of one read. It returns the error that
// should stop the loop, if any.
func (o *Loop) handle(e xcb.Event, err error) error {
	if err == nil {
		if e != nil {
			o.Dispatch(e)
		}
		return nil
	}

	var xerr xcb.Error
	if errors.As(err, &xerr) {
		o.observable.Trigger(ServerError, xerr)
		return nil
	}
	if errors.Is(err, xcb.ErrUnknownEvent) {
		o.log.Warn("msg", "skipping event", "error", err)
		return nil
	}
	return err
}

// Drain dispatches every event already queued and returns how many were
// read.
func (o *Loop) Drain() (int, error) {
	var n int
	for {
		e, err := o.conn.PollForEvent()
		if err == nil && e == nil {
			return n, nil
		}
		n++
		if err := o.handle(e, err); err != nil {
			return n, err
		}
	}
}

// Run dispatches events until ctx ends or the connection fails.
func (o *Loop) Run(ctx context.Context) error {
	o.log.Debug("msg", "event loop started")
	defer o.log.Debug("msg", "event loop stopped")

	for {
		e, err := o.conn.WaitForEvent(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.handle(e, err); err != nil {
			return err
		}
	}
}
