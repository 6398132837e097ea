package xevent

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscoin.io/xcb/pkg/transport"
	"boscoin.io/xcb/pkg/transport/memory"
	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
	"boscoin.io/xcb/pkg/xproto"
)

func newLoop(t *testing.T) (*Loop, *memory.Transport) {
	tr := memory.New(wire.Pack(xproto.NewSetup("memory", nil, nil)))
	conn, err := xcb.NewConnection(tr, xproto.NewRegistry())
	require.NoError(t, err)
	return NewLoop(conn), tr
}

func exposeBytes(window uint32) []byte {
	e := &xproto.ExposeEvent{Window: window, Width: 10, Height: 10}
	e.ResponseType = xproto.Expose
	return wire.Pack(e)
}

func mapNotifyBytes(window uint32) []byte {
	e := &xproto.MapNotifyEvent{Window: window}
	e.ResponseType = xproto.MapNotify
	return wire.Pack(e)
}

func receive(t *testing.T, ch <-chan xcb.Event) xcb.Event {
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		require.FailNow(t, "no event dispatched")
	}
	return nil
}

func TestDrain(t *testing.T) {
	loop, tr := newLoop(t)

	exposed := make(chan xcb.Event, 4)
	all := make(chan xcb.Event, 4)
	failed := make(chan xcb.Error, 4)
	loop.On("Expose", func(e xcb.Event) { exposed <- e })
	loop.On(AllEvents, func(e xcb.Event) { all <- e })
	loop.OnError(func(e xcb.Error) { failed <- e })

	tr.PushEvent(exposeBytes(7))
	tr.PushEvent(mapNotifyBytes(8))
	unknown := make([]byte, 32)
	unknown[0] = 100
	tr.PushEvent(unknown)
	bad := wire.ErrorResponse{Code: xproto.BadWindow}
	tr.PushEvent(wire.Pack(&bad))

	n, err := loop.Drain()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	e := receive(t, exposed)
	assert.Equal(t, uint32(7), e.(*xproto.ExposeEvent).Window)

	assert.Equal(t, "Expose", xcb.EventName(receive(t, all)))
	assert.Equal(t, "MapNotify", xcb.EventName(receive(t, all)))

	select {
	case xerr := <-failed:
		assert.Equal(t, xproto.BadWindow, xerr.ErrorCode())
	case <-time.After(time.Second):
		require.FailNow(t, "no error dispatched")
	}

	n, err = loop.Drain()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOff(t *testing.T) {
	loop, tr := newLoop(t)

	mapped := make(chan xcb.Event, 2)
	loop.On("MapNotify", func(e xcb.Event) { mapped <- e })
	loop.Off("MapNotify")

	tr.PushEvent(mapNotifyBytes(1))
	_, err := loop.Drain()
	require.NoError(t, err)

	select {
	case <-mapped:
		assert.Fail(t, "handler still registered")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRun(t *testing.T) {
	loop, tr := newLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exposed := make(chan xcb.Event, 1)
	loop.On("Expose", func(e xcb.Event) { exposed <- e })

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	tr.PushEvent(exposeBytes(3))
	assert.Equal(t, uint32(3), receive(t, exposed).(*xproto.ExposeEvent).Window)

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		require.FailNow(t, "loop did not stop")
	}
}

func TestRunConnectionError(t *testing.T) {
	loop, tr := newLoop(t)

	tr.Fail(transport.ConnSocketError)
	err := loop.Run(context.Background())

	var connErr *xcb.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, transport.ConnSocketError, connErr.Code)
}
