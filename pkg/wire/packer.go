package wire

import (
	"bytes"
	"math"
)

// Packer accumulates the wire encoding of a message.
type Packer struct {
	buf     bytes.Buffer
	scratch [8]byte
}

func NewPacker() *Packer {
	return &Packer{}
}

// Bytes returns the bytes written so far.
func (o *Packer) Bytes() []byte {
	return o.buf.Bytes()
}

func (o *Packer) Len() int {
	return o.buf.Len()
}

func (o *Packer) PutUint8(v uint8) {
	o.buf.WriteByte(v)
}

func (o *Packer) PutInt8(v int8) {
	o.buf.WriteByte(byte(v))
}

func (o *Packer) PutBool(v bool) {
	if v {
		o.buf.WriteByte(1)
	} else {
		o.buf.WriteByte(0)
	}
}

func (o *Packer) PutUint16(v uint16) {
	Order.PutUint16(o.scratch[:2], v)
	o.buf.Write(o.scratch[:2])
}

func (o *Packer) PutInt16(v int16) {
	o.PutUint16(uint16(v))
}

func (o *Packer) PutUint32(v uint32) {
	Order.PutUint32(o.scratch[:4], v)
	o.buf.Write(o.scratch[:4])
}

func (o *Packer) PutInt32(v int32) {
	o.PutUint32(uint32(v))
}

func (o *Packer) PutUint64(v uint64) {
	Order.PutUint64(o.scratch[:8], v)
	o.buf.Write(o.scratch[:8])
}

func (o *Packer) PutFloat32(v float32) {
	o.PutUint32(math.Float32bits(v))
}

func (o *Packer) PutBytes(b []byte) {
	o.buf.Write(b)
}

// Pad writes n zero bytes.
func (o *Packer) Pad(n int) {
	for i := 0; i < n; i++ {
		o.buf.WriteByte(0)
	}
}

// Align pads the buffer up to the next multiple of n.
func (o *Packer) Align(n int) {
	if r := o.buf.Len() % n; r != 0 {
		o.Pad(n - r)
	}
}

// Write implements io.Writer so bulk encoders can target a Packer.
func (o *Packer) Write(b []byte) (int, error) {
	return o.buf.Write(b)
}
