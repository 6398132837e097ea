package xproto

import (
	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
)

const (
	KeyPress       uint8 = 2
	Expose         uint8 = 12
	MapNotify      uint8 = 19
	PropertyNotify uint8 = 28
	ClientMessage  uint8 = 33
)

// finish skips the padding up to the fixed event size.
func finish(u *wire.Unpacker) error {
	if n := wire.EventSize - u.Pos(); n > 0 {
		u.Skip(n)
	}
	return u.Err()
}

func pad(p *wire.Packer) {
	if n := wire.EventSize - p.Len(); n > 0 {
		p.Pad(n)
	}
}

type KeyPressEvent struct {
	wire.Response
	Detail     uint8
	Time       uint32
	Root       uint32
	Event      uint32
	Child      uint32
	RootX      int16
	RootY      int16
	EventX     int16
	EventY     int16
	State      uint16
	SameScreen bool
}

func (o *KeyPressEvent) EventName() string { return "KeyPress" }

func (o *KeyPressEvent) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	o.Detail = u.Uint8()
	o.Sequence = u.Uint16()
	o.Time = u.Uint32()
	o.Root = u.Uint32()
	o.Event = u.Uint32()
	o.Child = u.Uint32()
	o.RootX = u.Int16()
	o.RootY = u.Int16()
	o.EventX = u.Int16()
	o.EventY = u.Int16()
	o.State = u.Uint16()
	o.SameScreen = u.Bool()
	return finish(u)
}

func (o *KeyPressEvent) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.PutUint8(o.Detail)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Time)
	p.PutUint32(o.Root)
	p.PutUint32(o.Event)
	p.PutUint32(o.Child)
	p.PutInt16(o.RootX)
	p.PutInt16(o.RootY)
	p.PutInt16(o.EventX)
	p.PutInt16(o.EventY)
	p.PutUint16(o.State)
	p.PutBool(o.SameScreen)
	pad(p)
}

type ExposeEvent struct {
	wire.Response
	Window uint32
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
	Count  uint16
}

func (o *ExposeEvent) EventName() string { return "Expose" }

func (o *ExposeEvent) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Window = u.Uint32()
	o.X = u.Uint16()
	o.Y = u.Uint16()
	o.Width = u.Uint16()
	o.Height = u.Uint16()
	o.Count = u.Uint16()
	return finish(u)
}

func (o *ExposeEvent) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Window)
	p.PutUint16(o.X)
	p.PutUint16(o.Y)
	p.PutUint16(o.Width)
	p.PutUint16(o.Height)
	p.PutUint16(o.Count)
	pad(p)
}

type MapNotifyEvent struct {
	wire.Response
	Event            uint32
	Window           uint32
	OverrideRedirect bool
}

func (o *MapNotifyEvent) EventName() string { return "MapNotify" }

func (o *MapNotifyEvent) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Event = u.Uint32()
	o.Window = u.Uint32()
	o.OverrideRedirect = u.Bool()
	return finish(u)
}

func (o *MapNotifyEvent) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Event)
	p.PutUint32(o.Window)
	p.PutBool(o.OverrideRedirect)
	pad(p)
}

const (
	PropertyNewValue uint8 = 0
	PropertyDelete   uint8 = 1
)

type PropertyNotifyEvent struct {
	wire.Response
	Window uint32
	Atom   uint32
	Time   uint32
	State  uint8
}

func (o *PropertyNotifyEvent) EventName() string { return "PropertyNotify" }

func (o *PropertyNotifyEvent) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Window = u.Uint32()
	o.Atom = u.Uint32()
	o.Time = u.Uint32()
	o.State = u.Uint8()
	return finish(u)
}

func (o *PropertyNotifyEvent) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Window)
	p.PutUint32(o.Atom)
	p.PutUint32(o.Time)
	p.PutUint8(o.State)
	pad(p)
}

// ClientMessageData is the 20 byte payload of a client message. Format of
// the enclosing event says which of the views is meant.
type ClientMessageData struct {
	wire.Union
}

func (o ClientMessageData) Data8() []uint8 {
	return wire.UnpackPrimitives[uint8](wire.NewUnpacker(o.View()), 20).Items
}

func (o ClientMessageData) Data16() []uint16 {
	return wire.UnpackPrimitives[uint16](wire.NewUnpacker(o.View()), 10).Items
}

func (o ClientMessageData) Data32() []uint32 {
	return wire.UnpackPrimitives[uint32](wire.NewUnpacker(o.View()), 5).Items
}

// NewClientMessageData32 builds the payload of a format 32 message.
func NewClientMessageData32(values [5]uint32) ClientMessageData {
	p := wire.NewPacker()
	wire.PackPrimitives(p, values[:])
	return ClientMessageData{wire.Union{Raw: p.Bytes()}}
}

type ClientMessageEvent struct {
	wire.Response
	Format uint8
	Window uint32
	Type   uint32
	Data   ClientMessageData
}

func (o *ClientMessageEvent) EventName() string { return "ClientMessage" }

func (o *ClientMessageEvent) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	o.Format = u.Uint8()
	o.Sequence = u.Uint16()
	o.Window = u.Uint32()
	o.Type = u.Uint32()
	o.Data = ClientMessageData{wire.UnpackUnion(u, 20)}
	return u.Err()
}

func (o *ClientMessageEvent) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.PutUint8(o.Format)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Window)
	p.PutUint32(o.Type)
	o.Data.Pack(p)
}

func decodeEvent[T any, PT interface {
	*T
	wire.Struct
	xcb.Event
}](data []byte) (xcb.Event, error) {
	e, err := wire.Decode[T, PT](data)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Events is the core event table.
var Events = map[uint8]xcb.EventFunc{
	KeyPress:       decodeEvent[KeyPressEvent, *KeyPressEvent],
	Expose:         decodeEvent[ExposeEvent, *ExposeEvent],
	MapNotify:      decodeEvent[MapNotifyEvent, *MapNotifyEvent],
	PropertyNotify: decodeEvent[PropertyNotifyEvent, *PropertyNotifyEvent],
	ClientMessage:  decodeEvent[ClientMessageEvent, *ClientMessageEvent],
}
