package xcb

import (
	"fmt"

	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/transport"
)

var (
	ErrInvalidConnection      = errors.New("invalid connection")
	ErrConnectionReleased     = errors.New("connection of cookie has been released")
	ErrInvalidRequest         = errors.New("request data must be at least 4 bytes")
	ErrNoReply                = errors.New("no reply for this message type")
	ErrNotCheckable           = errors.New("request is not void and checked")
	ErrUnconfiguredDispatch   = errors.New("core protocol is not registered")
	ErrInvalidRegistration    = errors.New("invalid registration")
	ErrMalformedResponse      = errors.New("malformed response")
	ErrUnknownEvent           = errors.New("unknown event")
	ErrExtensionNotRegistered = errors.New("extension is not registered")
	ErrExtensionNotPresent    = errors.New("extension is not present on the server")
)

// BadSequenceError is returned when the transport has neither a reply nor
// an error for a sequence number.
type BadSequenceError struct {
	Sequence uint64
}

func (o *BadSequenceError) Error() string {
	return fmt.Sprintf("bad sequence number %d", o.Sequence)
}

// ConnectionError reports a connection in an error state. Once a
// connection has failed every later operation returns one.
type ConnectionError struct {
	Code transport.ConnError
}

func (o *ConnectionError) Error() string {
	return o.Code.Reason()
}
