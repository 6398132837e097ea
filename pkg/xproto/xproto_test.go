package xproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
)

func testScreen() Screen {
	visual := VisualType{VisualID: 0x21, Class: 4, BitsPerRGBValue: 8, ColormapEntries: 256, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff}
	depth := Depth{Depth: 24, VisualsLen: 1, Visuals: wire.NewList(visual)}
	return Screen{
		Root:             0x1e3,
		WhitePixel:       0xffffff,
		WidthInPixels:    1920,
		HeightInPixels:   1080,
		RootVisual:       0x21,
		RootDepth:        24,
		AllowedDepthsLen: 2,
		AllowedDepths:    wire.NewList(depth, Depth{Depth: 1}),
	}
}

func TestSetupRoundTrip(t *testing.T) {
	s := NewSetup("The X.Org Foundation", []Format{{Depth: 24, BitsPerPixel: 32, ScanlinePad: 32}}, []Screen{testScreen()})
	b := wire.Pack(s)
	require.Equal(t, 8+4*int(s.Length), len(b))
	assert.Equal(t, uint8(1), b[0])

	decoded, err := DecodeSetup(b)
	require.NoError(t, err)
	setup := decoded.(*Setup)

	assert.Equal(t, len(b), setup.Bufsize())
	assert.Equal(t, "The X.Org Foundation", setup.VendorString())
	assert.Equal(t, uint16(11), setup.ProtocolMajorVersion)
	require.Equal(t, 1, setup.PixmapFormats.Len())
	assert.Equal(t, 8, setup.PixmapFormats.Bufsize)
	require.Equal(t, 1, setup.Roots.Len())

	screen := setup.Roots.At(0)
	assert.Equal(t, uint16(1920), screen.WidthInPixels)
	require.Equal(t, 2, screen.AllowedDepths.Len())
	depth0, depth1 := screen.AllowedDepths.At(0), screen.AllowedDepths.At(1)
	assert.Equal(t, 8+24, depth0.Bufsize())
	assert.Equal(t, 8, depth1.Bufsize())
	assert.Equal(t, uint32(0xff0000), screen.AllowedDepths.At(0).Visuals.At(0).RedMask)
	assert.Equal(t, 40+32+8, screen.Bufsize())

	assert.Equal(t, b, wire.Pack(setup))
}

func TestSetupTooShort(t *testing.T) {
	b := wire.Pack(NewSetup("vendor", nil, []Screen{testScreen()}))
	_, err := DecodeSetup(b[:len(b)-4])
	assert.Error(t, err)
}

func TestStrHello(t *testing.T) {
	s := NewStr("hello")
	b := wire.Pack(&s)

	var decoded Str
	n, err := wire.UnpackBytes(&decoded, b)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, uint8(5), decoded.NameLen)
	assert.Equal(t, "hello", decoded.String())
	assert.Equal(t, 6, decoded.Bufsize())
}

func TestListExtensionsReply(t *testing.T) {
	r := &ListExtensionsReply{
		NamesLen: 2,
		Names:    wire.NewList(NewStr("RANDR"), NewStr("XFIXES")),
	}
	r.ResponseType = wire.KindReply
	r.Length = 4
	b := wire.Pack(r)
	require.Equal(t, 32+16, len(b))

	decoded, err := wire.Decode[ListExtensionsReply, *ListExtensionsReply](b)
	require.NoError(t, err)
	assert.Equal(t, []string{"RANDR", "XFIXES"}, decoded.Strings())
	assert.Equal(t, 13, decoded.Names.Bufsize)
	assert.Equal(t, 48, decoded.Bufsize())
	assert.Equal(t, b, wire.Pack(decoded))
}

func TestEvents(t *testing.T) {
	cases := []struct {
		code  uint8
		event interface {
			wire.Struct
			xcb.Event
		}
		name string
	}{
		{KeyPress, &KeyPressEvent{Detail: 38, Time: 1000, RootX: -5, SameScreen: true}, "KeyPress"},
		{Expose, &ExposeEvent{Window: 7, Width: 100, Height: 50, Count: 1}, "Expose"},
		{MapNotify, &MapNotifyEvent{Event: 1, Window: 2, OverrideRedirect: true}, "MapNotify"},
		{PropertyNotify, &PropertyNotifyEvent{Window: 3, Atom: 39, State: PropertyDelete}, "PropertyNotify"},
	}

	for _, c := range cases {
		c.event.Header().ResponseType = c.code
		c.event.Header().Sequence = 9
		b := wire.Pack(c.event)
		require.Equal(t, wire.EventSize, len(b), c.name)

		decoded, err := Events[c.code](b)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.name, xcb.EventName(decoded))
		assert.Equal(t, uint16(9), decoded.Header().Sequence)
		assert.Equal(t, wire.EventSize, decoded.Header().Bufsize())
		assert.Equal(t, b, wire.Pack(decoded.(wire.Struct)))
	}
}

func TestClientMessage(t *testing.T) {
	data := make([]byte, 32)
	data[0] = ClientMessage
	data[1] = 32
	wire.Order.PutUint32(data[4:], 0x400001)
	wire.Order.PutUint32(data[8:], 301)
	for i := 0; i < 20; i++ {
		data[12+i] = byte(i)
	}

	e, err := Events[ClientMessage](data)
	require.NoError(t, err)
	m := e.(*ClientMessageEvent)

	assert.Equal(t, uint8(32), m.Format)
	assert.Equal(t, uint32(0x400001), m.Window)
	assert.Equal(t, uint32(301), m.Type)
	assert.Equal(t, uint32(0x03020100), m.Data.Data32()[0])
	assert.Equal(t, uint16(0x0302), m.Data.Data16()[1])
	assert.Equal(t, uint8(19), m.Data.Data8()[19])
	assert.Equal(t, 32, m.Bufsize())

	built := NewClientMessageData32([5]uint32{0x03020100, 0x07060504, 0x0b0a0908, 0x0f0e0d0c, 0x13121110})
	assert.Equal(t, m.Data.Raw, built.Raw)
}

func TestCoreErrors(t *testing.T) {
	e := wire.ErrorResponse{Code: BadWindow, BadValue: 0x1234, MajorOpcode: MapWindowOpcode}
	e.Sequence = 4
	b := wire.Pack(&e)

	require.Len(t, Errors, 17)
	decoded, err := Errors[BadWindow](b)
	require.NoError(t, err)

	core := decoded.(*CoreError)
	assert.Equal(t, "Window", core.Name)
	assert.Equal(t, BadWindow, core.ErrorCode())
	assert.Equal(t, uint32(0x1234), core.BadValue)
	assert.Equal(t, uint16(4), core.Header().Sequence)
	assert.Contains(t, core.Error(), "Window error")
}

func TestRegister(t *testing.T) {
	reg := xcb.NewRegistry()
	assert.False(t, reg.CoreRegistered())
	require.NoError(t, Register(reg))
	assert.True(t, reg.CoreRegistered())
	assert.True(t, NewRegistry().CoreRegistered())
}
