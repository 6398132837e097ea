package memory

import (
	"boscoin.io/xcb/pkg/transport"
)

// Dialer hands out memory transports and remembers how it was called.
type Dialer struct {
	Setup   []byte
	Options []Option

	// Err, when set, is returned by every dial.
	Err error

	Display *transport.Display
	Auth    *transport.AuthInfo
	FD      int
	Last    *Transport
}

var _ transport.Dialer = (*Dialer)(nil)

func NewDialer(setup []byte, opts ...Option) *Dialer {
	return &Dialer{Setup: setup, Options: opts, FD: -1}
}

func (o *Dialer) Connect(display transport.Display, auth *transport.AuthInfo) (transport.Transport, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	o.Display = &display
	o.Auth = auth
	o.Last = New(o.Setup, o.Options...)
	return o.Last, nil
}

func (o *Dialer) ConnectToFD(fd int, auth *transport.AuthInfo) (transport.Transport, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	o.FD = fd
	o.Auth = auth
	o.Last = New(o.Setup, append(o.Options, WithFD(fd))...)
	return o.Last, nil
}
