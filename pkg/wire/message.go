package wire

import (
	"fmt"
)

const (
	// KindError is the discriminant of server error messages.
	KindError uint8 = 0
	// KindReply is the discriminant of replies.
	KindReply uint8 = 1
	// GenericMessageThreshold marks discriminants above which a message is
	// treated as a generic client message.
	GenericMessageThreshold uint8 = 128

	// ReplyHeaderSize is the fixed part of every reply; Length counts the
	// 4-byte words that follow it.
	ReplyHeaderSize = 32
	// EventSize is the size of every core event and error.
	EventSize = 32
	// RequestHeaderSize is the minimum size of a request.
	RequestHeaderSize = 4
)

// Response carries the fields shared by everything the server sends: the
// discriminant in byte 0 and the sequence number in bytes 2-3.
type Response struct {
	Sized
	ResponseType uint8
	Sequence     uint16
}

func (o *Response) Header() *Response {
	return o
}

// Kind returns the discriminant with the synthetic-event bit cleared.
func (o *Response) Kind() uint8 {
	return o.ResponseType & 0x7f
}

// PeekResponse reads the common header without consuming the buffer.
func PeekResponse(data []byte) (Response, error) {
	if len(data) < 4 {
		return Response{}, &BufferTooSmallError{Need: 4, Size: len(data)}
	}
	return Response{
		ResponseType: data[0],
		Sequence:     Order.Uint16(data[2:4]),
	}, nil
}

// Reply is the header of a reply.
type Reply struct {
	Response
	Length uint32
}

// Size returns the number of bytes the whole reply occupies.
func (o *Reply) Size() int {
	return ReplyHeaderSize + 4*int(o.Length)
}

// PeekReply reads the reply header, including the length field.
func PeekReply(data []byte) (Reply, error) {
	r, err := PeekResponse(data)
	if err != nil {
		return Reply{}, err
	}
	if len(data) < 8 {
		return Reply{}, &BufferTooSmallError{Offset: 4, Need: 4, Size: len(data) - 4}
	}
	return Reply{Response: r, Length: Order.Uint32(data[4:8])}, nil
}

// ErrorResponse is the common layout of every server error. It satisfies
// error so a decoded server error can be returned directly.
type ErrorResponse struct {
	Response
	Code        uint8
	BadValue    uint32
	MinorOpcode uint16
	MajorOpcode uint8
}

func (o *ErrorResponse) Unpack(u *Unpacker) error {
	o.ResponseType = u.Uint8()
	o.Code = u.Uint8()
	o.Sequence = u.Uint16()
	o.BadValue = u.Uint32()
	o.MinorOpcode = u.Uint16()
	o.MajorOpcode = u.Uint8()
	u.Skip(21)
	return u.Err()
}

func (o *ErrorResponse) Pack(p *Packer) {
	p.PutUint8(o.ResponseType)
	p.PutUint8(o.Code)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.BadValue)
	p.PutUint16(o.MinorOpcode)
	p.PutUint8(o.MajorOpcode)
	p.Pad(21)
}

func (o *ErrorResponse) ErrorCode() uint8 {
	return o.Code
}

func (o *ErrorResponse) Error() string {
	return fmt.Sprintf(
		"x error %d: sequence=%d bad-value=0x%x major=%d minor=%d",
		o.Code, o.Sequence, o.BadValue, o.MajorOpcode, o.MinorOpcode,
	)
}
