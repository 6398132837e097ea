package xcb

import (
	"context"
	"weak"
)

// Cookie is the handle of a sent request. It refers to its connection
// weakly, so a forgotten connection is collected even while cookies of it
// are still around.
type Cookie struct {
	conn     weak.Pointer[Connection]
	Sequence uint64
	Checked  bool
	isVoid   bool
}

func (o Cookie) connection() (*Connection, error) {
	c := o.conn.Value()
	if c == nil {
		return nil, ErrConnectionReleased
	}
	return c, nil
}

// Check waits until the server has processed a void checked request and
// returns its error, if any. Calling Check on any other cookie is a
// programming error and panics.
func (o Cookie) Check(ctx context.Context) error {
	if !o.isVoid || !o.Checked {
		panic(ErrNotCheckable)
	}

	c, err := o.connection()
	if err != nil {
		return err
	}
	return c.RequestCheck(ctx, o.Sequence)
}

// VoidCookie is returned by requests without a reply.
type VoidCookie struct {
	Cookie
}

// Reply always fails; void requests have nothing to return.
func (o VoidCookie) Reply() error {
	return ErrNoReply
}

// ReplyCookie is returned by requests with a reply of type R.
type ReplyCookie[R any] struct {
	Cookie
	decode func([]byte) (R, error)
}

// Reply blocks until the reply or error of the request is available and
// decodes the reply. Replies are not cached; resolving a cookie twice asks
// the transport again.
func (o ReplyCookie[R]) Reply(ctx context.Context) (R, error) {
	var zero R

	c, err := o.connection()
	if err != nil {
		return zero, err
	}

	data, err := c.WaitForReply(ctx, o.Sequence)
	if err != nil {
		return zero, err
	}
	return o.decode(data)
}
