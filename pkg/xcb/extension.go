package xcb

import (
	"weak"

	"boscoin.io/xcb/pkg/transport"
)

// Extension sends the requests of one protocol module, the core protocol
// or a named extension, over a connection.
type Extension struct {
	conn *Connection
	key  *ExtensionKey
}

func newExtension(conn *Connection, key *ExtensionKey) *Extension {
	return &Extension{conn: conn, key: key}
}

func (o *Extension) Conn() *Connection {
	return o.conn
}

// Name returns the extension name, empty for the core protocol.
func (o *Extension) Name() string {
	if o.key == nil {
		return ""
	}
	return o.key.Name
}

func (o *Extension) send(opcode uint8, data []byte, checked, isVoid bool) (Cookie, error) {
	if len(data) < 4 {
		return Cookie{}, ErrInvalidRequest
	}

	sequence, err := o.conn.SendRequest(&transport.Request{
		Extension: o.Name(),
		Opcode:    opcode,
		IsVoid:    isVoid,
		Checked:   checked,
		Data:      data,
	})
	if err != nil {
		return Cookie{}, err
	}

	return Cookie{
		conn:     weak.Make(o.conn),
		Sequence: sequence,
		Checked:  checked,
		isVoid:   isVoid,
	}, nil
}

// SendRequest sends a request without a reply. data holds the whole
// request; its first 4 bytes are overwritten with the header.
func (o *Extension) SendRequest(opcode uint8, data []byte, checked bool) (VoidCookie, error) {
	c, err := o.send(opcode, data, checked, true)
	if err != nil {
		return VoidCookie{}, err
	}
	return VoidCookie{Cookie: c}, nil
}

// SendReplyRequest sends a request whose reply is decoded by decode.
func SendReplyRequest[R any](ext *Extension, opcode uint8, data []byte, checked bool, decode func([]byte) (R, error)) (ReplyCookie[R], error) {
	c, err := ext.send(opcode, data, checked, false)
	if err != nil {
		return ReplyCookie[R]{}, err
	}
	return ReplyCookie[R]{Cookie: c, decode: decode}, nil
}
