package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Order is the byte order of every multi-byte field on the wire. Clients
// announce little endian in the connection setup.
var Order binary.ByteOrder = binary.LittleEndian

var (
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrNotCharList    = errors.New("list is not a list of single-byte characters")
)

// BufferTooSmallError is returned when a field extends past the declared
// size of the buffer it is decoded from.
type BufferTooSmallError struct {
	Offset int
	Need   int
	Size   int
}

func (o *BufferTooSmallError) Error() string {
	return fmt.Sprintf("buffer too small: need %d bytes at offset %d, size is %d", o.Need, o.Offset, o.Size)
}

func (o *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

// View is a read-only window over a byte region. Many views may alias one
// receive buffer; none of them ever writes to it.
type View struct {
	data   []byte
	offset int
	size   int
}

// NewView returns a view starting at offset and extending to the end of data.
func NewView(data []byte, offset int) (View, error) {
	if offset < 0 || offset > len(data) {
		return View{}, &BufferTooSmallError{Offset: offset, Need: 0, Size: len(data)}
	}
	return View{data: data, offset: offset, size: len(data) - offset}, nil
}

// NewSizedView returns a view of exactly size bytes starting at offset.
func NewSizedView(data []byte, offset, size int) (View, error) {
	if offset < 0 || size < 0 || offset+size > len(data) {
		return View{}, &BufferTooSmallError{Offset: offset, Need: size, Size: len(data) - offset}
	}
	return View{data: data, offset: offset, size: size}, nil
}

func (o View) Offset() int {
	return o.offset
}

func (o View) Size() int {
	return o.size
}

// Bytes returns the bytes covered by the view. The slice aliases the
// underlying buffer and must not be modified.
func (o View) Bytes() []byte {
	return o.data[o.offset : o.offset+o.size : o.offset+o.size]
}

// Slice returns the sub view [offset, offset+size) relative to this view.
func (o View) Slice(offset, size int) (View, error) {
	if offset < 0 || size < 0 || offset+size > o.size {
		return View{}, &BufferTooSmallError{Offset: o.offset + offset, Need: size, Size: o.size - offset}
	}
	return View{data: o.data, offset: o.offset + offset, size: size}, nil
}

// Pad returns the number of bytes needed to align n to a multiple of 4.
func Pad(n int) int {
	return -n & 3
}
