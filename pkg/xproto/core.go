package xproto

import (
	"context"

	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
)

const (
	MapWindowOpcode      uint8 = 8
	InternAtomOpcode     uint8 = 16
	GetAtomNameOpcode    uint8 = 17
	GetInputFocusOpcode  uint8 = 43
	ListExtensionsOpcode uint8 = 99
)

// Core is the request API of the core protocol. Requests with a reply are
// checked unless the Unchecked variant is used; void requests are
// unchecked unless the Checked variant is used.
type Core struct {
	*xcb.Extension
}

func NewCore(ext *xcb.Extension) interface{} {
	return &Core{Extension: ext}
}

// Get returns the core API of a connection set up with a registry filled
// by Register.
func Get(conn *xcb.Connection) *Core {
	return conn.Core().(*Core)
}

// Register fills the core protocol tables of reg.
func Register(reg *xcb.Registry) error {
	return reg.RegisterCore(NewCore, DecodeSetup, Events, Errors)
}

// NewRegistry returns a registry with the core protocol registered.
func NewRegistry() *xcb.Registry {
	reg := xcb.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

func header(p *wire.Packer, data uint8) {
	p.PutUint8(0)
	p.PutUint8(data)
	p.Pad(2)
}

func (o *Core) mapWindow(window uint32, checked bool) (xcb.VoidCookie, error) {
	p := wire.NewPacker()
	header(p, 0)
	p.PutUint32(window)
	return o.SendRequest(MapWindowOpcode, p.Bytes(), checked)
}

func (o *Core) MapWindow(window uint32) (xcb.VoidCookie, error) {
	return o.mapWindow(window, false)
}

func (o *Core) MapWindowChecked(window uint32) (xcb.VoidCookie, error) {
	return o.mapWindow(window, true)
}

type InternAtomReply struct {
	wire.Reply
	Atom uint32
}

func (o *InternAtomReply) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Length = u.Uint32()
	o.Atom = u.Uint32()
	u.Skip(20)
	return u.Err()
}

func (o *InternAtomReply) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Length)
	p.PutUint32(o.Atom)
	p.Pad(20)
}

func (o *Core) internAtom(onlyIfExists bool, name string, checked bool) (xcb.ReplyCookie[*InternAtomReply], error) {
	p := wire.NewPacker()
	var flag uint8
	if onlyIfExists {
		flag = 1
	}
	header(p, flag)
	p.PutUint16(uint16(len(name)))
	p.Pad(2)
	p.PutBytes([]byte(name))
	p.Align(4)
	return xcb.SendReplyRequest(o.Extension, InternAtomOpcode, p.Bytes(), checked, wire.Decode[InternAtomReply, *InternAtomReply])
}

func (o *Core) InternAtom(onlyIfExists bool, name string) (xcb.ReplyCookie[*InternAtomReply], error) {
	return o.internAtom(onlyIfExists, name, true)
}

func (o *Core) InternAtomUnchecked(onlyIfExists bool, name string) (xcb.ReplyCookie[*InternAtomReply], error) {
	return o.internAtom(onlyIfExists, name, false)
}

type GetAtomNameReply struct {
	wire.Reply
	NameLen uint16
	Name    wire.List[byte]
}

func (o *GetAtomNameReply) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Length = u.Uint32()
	o.NameLen = u.Uint16()
	u.Skip(22)
	o.Name = wire.UnpackPrimitives[byte](u, int(o.NameLen))
	u.Align(4)
	return u.Err()
}

func (o *GetAtomNameReply) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Length)
	p.PutUint16(o.NameLen)
	p.Pad(22)
	wire.PackPrimitives(p, o.Name.Items)
	p.Align(4)
}

func (o *Core) getAtomName(atom uint32, checked bool) (xcb.ReplyCookie[*GetAtomNameReply], error) {
	p := wire.NewPacker()
	header(p, 0)
	p.PutUint32(atom)
	return xcb.SendReplyRequest(o.Extension, GetAtomNameOpcode, p.Bytes(), checked, wire.Decode[GetAtomNameReply, *GetAtomNameReply])
}

func (o *Core) GetAtomName(atom uint32) (xcb.ReplyCookie[*GetAtomNameReply], error) {
	return o.getAtomName(atom, true)
}

func (o *Core) GetAtomNameUnchecked(atom uint32) (xcb.ReplyCookie[*GetAtomNameReply], error) {
	return o.getAtomName(atom, false)
}

const (
	InputFocusNone        uint8 = 0
	InputFocusPointerRoot uint8 = 1
	InputFocusParent      uint8 = 2
)

type GetInputFocusReply struct {
	wire.Reply
	RevertTo uint8
	Focus    uint32
}

func (o *GetInputFocusReply) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	o.RevertTo = u.Uint8()
	o.Sequence = u.Uint16()
	o.Length = u.Uint32()
	o.Focus = u.Uint32()
	u.Skip(20)
	return u.Err()
}

func (o *GetInputFocusReply) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.PutUint8(o.RevertTo)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Length)
	p.PutUint32(o.Focus)
	p.Pad(20)
}

func (o *Core) getInputFocus(checked bool) (xcb.ReplyCookie[*GetInputFocusReply], error) {
	p := wire.NewPacker()
	header(p, 0)
	return xcb.SendReplyRequest(o.Extension, GetInputFocusOpcode, p.Bytes(), checked, wire.Decode[GetInputFocusReply, *GetInputFocusReply])
}

func (o *Core) GetInputFocus() (xcb.ReplyCookie[*GetInputFocusReply], error) {
	return o.getInputFocus(true)
}

func (o *Core) GetInputFocusUnchecked() (xcb.ReplyCookie[*GetInputFocusReply], error) {
	return o.getInputFocus(false)
}

// Str is a length prefixed string as used in lists of names.
type Str struct {
	wire.Sized
	NameLen uint8
	Name    wire.List[byte]
}

func NewStr(s string) Str {
	return Str{NameLen: uint8(len(s)), Name: wire.NewList([]byte(s)...)}
}

func (o *Str) Unpack(u *wire.Unpacker) error {
	o.NameLen = u.Uint8()
	o.Name = wire.UnpackPrimitives[byte](u, int(o.NameLen))
	return u.Err()
}

func (o *Str) Pack(p *wire.Packer) {
	p.PutUint8(o.NameLen)
	wire.PackPrimitives(p, o.Name.Items)
}

func (o *Str) String() string {
	s, _ := o.Name.ToString()
	return s
}

type ListExtensionsReply struct {
	wire.Reply
	NamesLen uint8
	Names    wire.List[Str]
}

func (o *ListExtensionsReply) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	o.NamesLen = u.Uint8()
	o.Sequence = u.Uint16()
	o.Length = u.Uint32()
	u.Skip(24)
	o.Names = wire.UnpackStructs[Str](u, int(o.NamesLen))
	u.Align(4)
	return u.Err()
}

func (o *ListExtensionsReply) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.PutUint8(o.NamesLen)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Length)
	p.Pad(24)
	wire.PackStructs(p, o.Names.Items)
	p.Align(4)
}

// Strings returns the extension names.
func (o *ListExtensionsReply) Strings() []string {
	names := make([]string, o.Names.Len())
	for i := range o.Names.Items {
		names[i] = o.Names.Items[i].String()
	}
	return names
}

func (o *Core) listExtensions(checked bool) (xcb.ReplyCookie[*ListExtensionsReply], error) {
	p := wire.NewPacker()
	header(p, 0)
	return xcb.SendReplyRequest(o.Extension, ListExtensionsOpcode, p.Bytes(), checked, wire.Decode[ListExtensionsReply, *ListExtensionsReply])
}

func (o *Core) ListExtensions() (xcb.ReplyCookie[*ListExtensionsReply], error) {
	return o.listExtensions(true)
}

func (o *Core) ListExtensionsUnchecked() (xcb.ReplyCookie[*ListExtensionsReply], error) {
	return o.listExtensions(false)
}

// QueryExtension asks the server about an extension. Answers are cached by
// the connection.
func (o *Core) QueryExtension(ctx context.Context, name string) (*xcb.ExtensionInfo, error) {
	info, err := o.Conn().ExtensionData(ctx, xcb.ExtensionKey{Name: name})
	if err != nil {
		return nil, errors.Wrapf(err, "QueryExtension %s", name)
	}
	return info, nil
}
