package xproto

import (
	"boscoin.io/xcb/pkg/wire"
)

type VisualType struct {
	wire.Sized
	VisualID        uint32
	Class           uint8
	BitsPerRGBValue uint8
	ColormapEntries uint16
	RedMask         uint32
	GreenMask       uint32
	BlueMask        uint32
}

func (o *VisualType) Unpack(u *wire.Unpacker) error {
	o.VisualID = u.Uint32()
	o.Class = u.Uint8()
	o.BitsPerRGBValue = u.Uint8()
	o.ColormapEntries = u.Uint16()
	o.RedMask = u.Uint32()
	o.GreenMask = u.Uint32()
	o.BlueMask = u.Uint32()
	u.Skip(4)
	return u.Err()
}

func (o *VisualType) Pack(p *wire.Packer) {
	p.PutUint32(o.VisualID)
	p.PutUint8(o.Class)
	p.PutUint8(o.BitsPerRGBValue)
	p.PutUint16(o.ColormapEntries)
	p.PutUint32(o.RedMask)
	p.PutUint32(o.GreenMask)
	p.PutUint32(o.BlueMask)
	p.Pad(4)
}

type Depth struct {
	wire.Sized
	Depth      uint8
	VisualsLen uint16
	Visuals    wire.List[VisualType]
}

func (o *Depth) Unpack(u *wire.Unpacker) error {
	o.Depth = u.Uint8()
	u.Skip(1)
	o.VisualsLen = u.Uint16()
	u.Skip(4)
	o.Visuals = wire.UnpackStructs[VisualType](u, int(o.VisualsLen))
	return u.Err()
}

func (o *Depth) Pack(p *wire.Packer) {
	p.PutUint8(o.Depth)
	p.Pad(1)
	p.PutUint16(o.VisualsLen)
	p.Pad(4)
	wire.PackStructs(p, o.Visuals.Items)
}

type Screen struct {
	wire.Sized
	Root                uint32
	DefaultColormap     uint32
	WhitePixel          uint32
	BlackPixel          uint32
	CurrentInputMasks   uint32
	WidthInPixels       uint16
	HeightInPixels      uint16
	WidthInMillimeters  uint16
	HeightInMillimeters uint16
	MinInstalledMaps    uint16
	MaxInstalledMaps    uint16
	RootVisual          uint32
	BackingStores       uint8
	SaveUnders          bool
	RootDepth           uint8
	AllowedDepthsLen    uint8
	AllowedDepths       wire.List[Depth]
}

func (o *Screen) Unpack(u *wire.Unpacker) error {
	o.Root = u.Uint32()
	o.DefaultColormap = u.Uint32()
	o.WhitePixel = u.Uint32()
	o.BlackPixel = u.Uint32()
	o.CurrentInputMasks = u.Uint32()
	o.WidthInPixels = u.Uint16()
	o.HeightInPixels = u.Uint16()
	o.WidthInMillimeters = u.Uint16()
	o.HeightInMillimeters = u.Uint16()
	o.MinInstalledMaps = u.Uint16()
	o.MaxInstalledMaps = u.Uint16()
	o.RootVisual = u.Uint32()
	o.BackingStores = u.Uint8()
	o.SaveUnders = u.Bool()
	o.RootDepth = u.Uint8()
	o.AllowedDepthsLen = u.Uint8()
	o.AllowedDepths = wire.UnpackStructs[Depth](u, int(o.AllowedDepthsLen))
	return u.Err()
}

func (o *Screen) Pack(p *wire.Packer) {
	p.PutUint32(o.Root)
	p.PutUint32(o.DefaultColormap)
	p.PutUint32(o.WhitePixel)
	p.PutUint32(o.BlackPixel)
	p.PutUint32(o.CurrentInputMasks)
	p.PutUint16(o.WidthInPixels)
	p.PutUint16(o.HeightInPixels)
	p.PutUint16(o.WidthInMillimeters)
	p.PutUint16(o.HeightInMillimeters)
	p.PutUint16(o.MinInstalledMaps)
	p.PutUint16(o.MaxInstalledMaps)
	p.PutUint32(o.RootVisual)
	p.PutUint8(o.BackingStores)
	p.PutBool(o.SaveUnders)
	p.PutUint8(o.RootDepth)
	p.PutUint8(o.AllowedDepthsLen)
	wire.PackStructs(p, o.AllowedDepths.Items)
}

type Format struct {
	wire.Sized
	Depth        uint8
	BitsPerPixel uint8
	ScanlinePad  uint8
}

func (o *Format) Unpack(u *wire.Unpacker) error {
	o.Depth = u.Uint8()
	o.BitsPerPixel = u.Uint8()
	o.ScanlinePad = u.Uint8()
	u.Skip(5)
	return u.Err()
}

func (o *Format) Pack(p *wire.Packer) {
	p.PutUint8(o.Depth)
	p.PutUint8(o.BitsPerPixel)
	p.PutUint8(o.ScanlinePad)
	p.Pad(5)
}

// Setup is the reply the server sends when a connection is established.
type Setup struct {
	wire.Sized
	Status                   uint8
	ProtocolMajorVersion     uint16
	ProtocolMinorVersion     uint16
	Length                   uint16
	ReleaseNumber            uint32
	ResourceIDBase           uint32
	ResourceIDMask           uint32
	MotionBufferSize         uint32
	VendorLen                uint16
	MaximumRequestLength     uint16
	RootsLen                 uint8
	PixmapFormatsLen         uint8
	ImageByteOrder           uint8
	BitmapFormatBitOrder     uint8
	BitmapFormatScanlineUnit uint8
	BitmapFormatScanlinePad  uint8
	MinKeycode               uint8
	MaxKeycode               uint8
	Vendor                   wire.List[byte]
	PixmapFormats            wire.List[Format]
	Roots                    wire.List[Screen]
}

func (o *Setup) Unpack(u *wire.Unpacker) error {
	o.Status = u.Uint8()
	u.Skip(1)
	o.ProtocolMajorVersion = u.Uint16()
	o.ProtocolMinorVersion = u.Uint16()
	o.Length = u.Uint16()
	o.ReleaseNumber = u.Uint32()
	o.ResourceIDBase = u.Uint32()
	o.ResourceIDMask = u.Uint32()
	o.MotionBufferSize = u.Uint32()
	o.VendorLen = u.Uint16()
	o.MaximumRequestLength = u.Uint16()
	o.RootsLen = u.Uint8()
	o.PixmapFormatsLen = u.Uint8()
	o.ImageByteOrder = u.Uint8()
	o.BitmapFormatBitOrder = u.Uint8()
	o.BitmapFormatScanlineUnit = u.Uint8()
	o.BitmapFormatScanlinePad = u.Uint8()
	o.MinKeycode = u.Uint8()
	o.MaxKeycode = u.Uint8()
	u.Skip(4)
	o.Vendor = wire.UnpackPrimitives[byte](u, int(o.VendorLen))
	u.Align(4)
	o.PixmapFormats = wire.UnpackStructs[Format](u, int(o.PixmapFormatsLen))
	o.Roots = wire.UnpackStructs[Screen](u, int(o.RootsLen))
	return u.Err()
}

func (o *Setup) Pack(p *wire.Packer) {
	p.PutUint8(o.Status)
	p.Pad(1)
	p.PutUint16(o.ProtocolMajorVersion)
	p.PutUint16(o.ProtocolMinorVersion)
	p.PutUint16(o.Length)
	p.PutUint32(o.ReleaseNumber)
	p.PutUint32(o.ResourceIDBase)
	p.PutUint32(o.ResourceIDMask)
	p.PutUint32(o.MotionBufferSize)
	p.PutUint16(o.VendorLen)
	p.PutUint16(o.MaximumRequestLength)
	p.PutUint8(o.RootsLen)
	p.PutUint8(o.PixmapFormatsLen)
	p.PutUint8(o.ImageByteOrder)
	p.PutUint8(o.BitmapFormatBitOrder)
	p.PutUint8(o.BitmapFormatScanlineUnit)
	p.PutUint8(o.BitmapFormatScanlinePad)
	p.PutUint8(o.MinKeycode)
	p.PutUint8(o.MaxKeycode)
	p.Pad(4)
	wire.PackPrimitives(p, o.Vendor.Items)
	p.Align(4)
	wire.PackStructs(p, o.PixmapFormats.Items)
	wire.PackStructs(p, o.Roots.Items)
}

func (o *Setup) VendorString() string {
	s, _ := o.Vendor.ToString()
	return s
}

// DecodeSetup is the setup decoder registered with the core protocol.
func DecodeSetup(data []byte) (wire.Struct, error) {
	setup, err := wire.Decode[Setup, *Setup](data)
	if err != nil {
		return nil, err
	}
	return setup, nil
}

// NewSetup builds a successful setup reply with consistent length fields,
// as an in-process server would send it.
func NewSetup(vendor string, formats []Format, roots []Screen) *Setup {
	o := &Setup{
		Status:               1,
		ProtocolMajorVersion: 11,
		ResourceIDBase:       0x200000,
		ResourceIDMask:       0x1fffff,
		VendorLen:            uint16(len(vendor)),
		MaximumRequestLength: 65535,
		RootsLen:             uint8(len(roots)),
		PixmapFormatsLen:     uint8(len(formats)),
		MinKeycode:           8,
		MaxKeycode:           255,
		Vendor:               wire.NewList([]byte(vendor)...),
		PixmapFormats:        wire.NewList(formats...),
		Roots:                wire.NewList(roots...),
	}
	o.Length = uint16((len(wire.Pack(o)) - 8) / 4)
	return o
}
