package wire

import (
	"math"
)

// Unpacker reads fixed-width fields sequentially out of a View. The first
// out-of-bounds read is remembered; later reads return zero values and
// Err reports the failure, so a decoder can read all of its fields and check
// once at the end.
type Unpacker struct {
	view View
	pos  int
	err  error
}

func NewUnpacker(view View) *Unpacker {
	return &Unpacker{view: view}
}

// Err returns the first error encountered.
func (o *Unpacker) Err() error {
	return o.err
}

// Pos returns the number of bytes consumed from the start of the view.
func (o *Unpacker) Pos() int {
	return o.pos
}

// Remaining returns the number of unread bytes.
func (o *Unpacker) Remaining() int {
	return o.view.size - o.pos
}

func (o *Unpacker) take(n int) []byte {
	if o.err != nil {
		return nil
	}
	if n < 0 || o.pos+n > o.view.size {
		o.err = &BufferTooSmallError{Offset: o.view.offset + o.pos, Need: n, Size: o.view.size - o.pos}
		return nil
	}
	start := o.view.offset + o.pos
	o.pos += n
	return o.view.data[start : start+n : start+n]
}

// Sub returns a view over the next n bytes and advances past them.
func (o *Unpacker) Sub(n int) View {
	if o.take(n) == nil && o.err != nil {
		return View{}
	}
	return View{data: o.view.data, offset: o.view.offset + o.pos - n, size: n}
}

// Rest returns a view over everything not read yet, without advancing.
func (o *Unpacker) Rest() View {
	if o.err != nil {
		return View{}
	}
	return View{data: o.view.data, offset: o.view.offset + o.pos, size: o.view.size - o.pos}
}

// Advance moves the cursor by n bytes consumed through Rest.
func (o *Unpacker) Advance(n int) {
	o.take(n)
}

func (o *Unpacker) Skip(n int) {
	o.take(n)
}

// Align skips padding up to the next multiple of n, relative to the start
// of the view.
func (o *Unpacker) Align(n int) {
	if r := o.pos % n; r != 0 {
		o.take(n - r)
	}
}

func (o *Unpacker) Bytes(n int) []byte {
	b := o.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (o *Unpacker) Uint8() uint8 {
	b := o.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (o *Unpacker) Int8() int8 {
	return int8(o.Uint8())
}

func (o *Unpacker) Bool() bool {
	return o.Uint8() != 0
}

func (o *Unpacker) Uint16() uint16 {
	b := o.take(2)
	if b == nil {
		return 0
	}
	return Order.Uint16(b)
}

func (o *Unpacker) Int16() int16 {
	return int16(o.Uint16())
}

func (o *Unpacker) Uint32() uint32 {
	b := o.take(4)
	if b == nil {
		return 0
	}
	return Order.Uint32(b)
}

func (o *Unpacker) Int32() int32 {
	return int32(o.Uint32())
}

func (o *Unpacker) Uint64() uint64 {
	b := o.take(8)
	if b == nil {
		return 0
	}
	return Order.Uint64(b)
}

func (o *Unpacker) Float32() float32 {
	return math.Float32frombits(o.Uint32())
}
