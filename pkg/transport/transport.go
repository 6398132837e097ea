package transport

import (
	"context"
)

// Request is a request ready to be written to the server. Data holds the
// whole request including the 4-byte header; the transport fills in the
// major opcode (and the minor opcode of extension requests) and the length.
type Request struct {
	// Extension is the extension name, empty for core requests.
	Extension string
	Opcode    uint8
	IsVoid    bool
	Checked   bool
	Data      []byte
}

// Transport is the byte level connection to a display server. It owns the
// socket, the sequence counter and the queues of replies, errors and events.
type Transport interface {
	// SendRequest queues the request and returns its sequence number, or 0
	// when the request could not be sent; HasError explains why.
	SendRequest(req *Request) uint64

	// WaitForReply blocks until the reply or error of sequence arrives.
	// Both are nil when the request has no reply, was already consumed, or
	// failed in a way that was reported to the event queue.
	WaitForReply(ctx context.Context, sequence uint64) (reply []byte, xerr []byte, err error)

	// RequestCheck blocks until the checked void request of sequence is
	// known to have succeeded (nil) or failed (the error bytes).
	RequestCheck(ctx context.Context, sequence uint64) (xerr []byte, err error)

	WaitForEvent(ctx context.Context) ([]byte, error)

	// PollForEvent returns the next queued event or nil.
	PollForEvent() []byte

	HasError() ConnError

	// Setup returns the raw connection setup bytes.
	Setup() []byte

	FileDescriptor() int

	MaximumRequestLength() uint32

	PrefetchMaximumRequestLength()

	Flush() bool

	GenerateID() uint32

	Disconnect()
}

// Dialer opens transports.
type Dialer interface {
	Connect(display Display, auth *AuthInfo) (Transport, error)

	ConnectToFD(fd int, auth *AuthInfo) (Transport, error)
}

// Encode writes the header of req into its data: the major opcode, the
// minor opcode when the request belongs to an extension, and the length in
// 4-byte units. Data is padded to a multiple of 4 first.
func Encode(req *Request, major uint8) []byte {
	data := req.Data
	if pad := -len(data) & 3; pad > 0 {
		data = append(data, make([]byte, pad)...)
	}

	if len(req.Extension) < 1 {
		data[0] = req.Opcode
	} else {
		data[0] = major
		data[1] = req.Opcode
	}

	n := len(data) / 4
	data[2] = byte(n)
	data[3] = byte(n >> 8)
	return data
}
