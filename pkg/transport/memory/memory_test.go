package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscoin.io/xcb/pkg/transport"
)

func reply(sequence uint64) []byte {
	b := make([]byte, 32)
	b[0] = 1
	b[2] = byte(sequence)
	b[3] = byte(sequence >> 8)
	return b
}

func TestSequenceStart(t *testing.T) {
	tr := New(nil)
	tr.SetSequence(41)

	seq := tr.SendRequest(&transport.Request{Opcode: 43, Data: make([]byte, 4)})
	assert.Equal(t, uint64(42), seq)
	seq = tr.SendRequest(&transport.Request{Opcode: 8, IsVoid: true, Data: make([]byte, 8)})
	assert.Equal(t, uint64(43), seq)

	reqs := tr.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []byte{43, 0, 1, 0}, reqs[0].Data)
	assert.Equal(t, uint8(8), reqs[1].Data[0])
	assert.Equal(t, uint8(2), reqs[1].Data[2])
}

func TestPendingReply(t *testing.T) {
	tr := New(nil)
	seq := tr.SendRequest(&transport.Request{Opcode: 43, Data: make([]byte, 4)})

	done := make(chan []byte)
	go func() {
		r, _, err := tr.WaitForReply(context.Background(), seq)
		assert.NoError(t, err)
		done <- r
	}()

	select {
	case <-done:
		t.Fatal("reply arrived before it was set")
	case <-time.After(20 * time.Millisecond):
	}

	tr.SetReply(seq, reply(seq))
	select {
	case r := <-done:
		assert.Equal(t, reply(seq), r)
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}

	// consumed
	r, xerr, err := tr.WaitForReply(context.Background(), seq)
	assert.NoError(t, err)
	assert.Nil(t, r)
	assert.Nil(t, xerr)
}

func TestWaitCanceled(t *testing.T) {
	tr := New(nil)
	seq := tr.SendRequest(&transport.Request{Opcode: 43, Data: make([]byte, 4)})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := tr.WaitForReply(ctx, seq)
	assert.Equal(t, context.DeadlineExceeded, err)

	_, err = tr.WaitForEvent(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestHandlerErrors(t *testing.T) {
	xerr := make([]byte, 32)
	xerr[1] = 3
	tr := New(nil, WithHandler(func(req *transport.Request, seq uint64) ([]byte, []byte) {
		return nil, xerr
	}))

	checked := tr.SendRequest(&transport.Request{Opcode: 8, IsVoid: true, Checked: true, Data: make([]byte, 8)})
	got, err := tr.RequestCheck(context.Background(), checked)
	require.NoError(t, err)
	assert.Equal(t, xerr, got)

	// unchecked errors go to the event queue
	unchecked := tr.SendRequest(&transport.Request{Opcode: 8, IsVoid: true, Data: make([]byte, 8)})
	got, err = tr.RequestCheck(context.Background(), unchecked)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, xerr, tr.PollForEvent())
	assert.Nil(t, tr.PollForEvent())
}

func TestFailures(t *testing.T) {
	tr := New(nil, WithMaximumRequestLength(2))

	assert.Equal(t, uint64(0), tr.SendRequest(&transport.Request{Data: make([]byte, 3)}))
	assert.Equal(t, transport.ConnOK, tr.HasError())

	assert.Equal(t, uint64(0), tr.SendRequest(&transport.Request{Data: make([]byte, 12)}))
	assert.Equal(t, transport.ConnRequestLengthExceeded, tr.HasError())
	assert.False(t, tr.Flush())

	tr = New(nil)
	assert.Equal(t, uint64(0), tr.SendRequest(&transport.Request{Extension: "RANDR", Data: make([]byte, 4)}))
	assert.Equal(t, transport.ConnExtensionNotSupported, tr.HasError())

	tr = New(nil)
	seq := tr.SendRequest(&transport.Request{Opcode: 43, Data: make([]byte, 4)})
	go tr.Fail(transport.ConnSocketError)
	r, xerr, err := tr.WaitForReply(context.Background(), seq)
	assert.NoError(t, err)
	assert.Nil(t, r)
	assert.Nil(t, xerr)
	assert.Equal(t, transport.ConnSocketError, tr.HasError())
}

func TestEvents(t *testing.T) {
	tr := New(nil)
	assert.Nil(t, tr.PollForEvent())

	go tr.PushEvent([]byte{12})
	e, err := tr.WaitForEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{12}, e)
}

func TestIDsAndState(t *testing.T) {
	tr := New([]byte{1, 2}, WithFD(7))
	assert.Equal(t, uint32(0x200000), tr.GenerateID())
	assert.Equal(t, uint32(0x200001), tr.GenerateID())
	assert.Equal(t, 7, tr.FileDescriptor())
	assert.Equal(t, []byte{1, 2}, tr.Setup())

	tr.PrefetchMaximumRequestLength()
	assert.True(t, tr.Prefetched())
	assert.True(t, tr.Flush())
	assert.Equal(t, 1, tr.Flushes())

	tr.Disconnect()
	assert.True(t, tr.Closed())
	assert.Equal(t, transport.ConnSocketError, tr.HasError())
}

func TestDialer(t *testing.T) {
	d := NewDialer([]byte{1})
	tr, err := d.Connect(transport.Display{Number: 1, Screen: 2}, &transport.AuthInfo{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, d.Last, tr)
	assert.Equal(t, 2, d.Display.Screen)

	tr, err = d.ConnectToFD(5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, tr.FileDescriptor())
}
