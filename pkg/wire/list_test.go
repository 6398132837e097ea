package wire

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPrimitivesRoundTrip(t *testing.T) {
	p := NewPacker()
	PackPrimitives(p, []uint32{0, 1, 2, 3})
	ints := p.Bytes()
	require.Equal(t, 16, len(ints))

	v, _ := NewView(ints, 0)
	u := NewUnpacker(v)
	l := UnpackPrimitives[uint32](u, 4)
	require.NoError(t, u.Err())

	assert.Equal(t, []uint32{0, 1, 2, 3}, l.Items)
	assert.Equal(t, 16, l.Bufsize)

	p = NewPacker()
	PackPrimitives(p, l.Items)
	assert.Equal(t, ints, p.Bytes())
}

type testAtom uint32

func TestListNamedPrimitives(t *testing.T) {
	data := []byte{1, 0, 0, 0, 0xff, 0, 0, 0}
	v, _ := NewView(data, 0)
	u := NewUnpacker(v)

	l := UnpackPrimitives[testAtom](u, 2)
	require.NoError(t, u.Err())
	assert.Equal(t, []testAtom{1, 255}, l.Items)

	p := NewPacker()
	PackPrimitives(p, l.Items)
	assert.Equal(t, data, p.Bytes())
}

func TestListEmpty(t *testing.T) {
	v, err := NewView([]byte{}, 0)
	require.NoError(t, err)
	u := NewUnpacker(v)

	l := UnpackPrimitives[uint16](u, 0)
	require.NoError(t, u.Err())
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.Bufsize)

	s := UnpackStructs[testStr](u, 0)
	require.NoError(t, u.Err())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Bufsize)

	// offset at the end of a non-empty parent buffer
	v, err = NewView([]byte{1, 2}, 2)
	require.NoError(t, err)
	u = NewUnpacker(v)
	l8 := UnpackPrimitives[uint8](u, 0)
	require.NoError(t, u.Err())
	assert.Equal(t, 0, l8.Len())
}

func TestListLengthInvariant(t *testing.T) {
	names := []string{"a", "bc", "", "defg", "hijklmn"}
	p := NewPacker()
	var want int
	for _, n := range names {
		s := newTestStr(n)
		s.Pack(p)
		want += 1 + len(n)
	}

	for count := 0; count <= len(names); count++ {
		v, _ := NewView(p.Bytes(), 0)
		u := NewUnpacker(v)
		l := UnpackStructs[testStr](u, count)
		require.NoError(t, u.Err())
		assert.Equal(t, count, l.Len())

		sum := 0
		for _, item := range l.Items {
			sum += item.Bufsize()
		}
		assert.Equal(t, sum, l.Bufsize)
		assert.Equal(t, u.Pos(), l.Bufsize)
	}

	v, _ := NewView(p.Bytes(), 0)
	u := NewUnpacker(v)
	l := UnpackStructs[testStr](u, len(names))
	assert.Equal(t, want, l.Bufsize)
}

func TestListTooSmall(t *testing.T) {
	v, _ := NewView([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 0)
	u := NewUnpacker(v)

	l := UnpackPrimitives[uint32](u, 3)
	assert.Equal(t, 0, l.Len())
	assert.True(t, errors.Is(u.Err(), ErrBufferTooSmall))

	v, _ = NewView([]byte{2, 'a', 'b', 9, 'c'}, 0)
	u = NewUnpacker(v)
	s := UnpackStructs[testStr](u, 2)
	assert.Equal(t, 0, s.Len())
	assert.True(t, errors.Is(u.Err(), ErrBufferTooSmall))
}

func TestListToString(t *testing.T) {
	l := NewList([]byte{'x', 0xe9}...)
	s, err := l.ToString()
	require.NoError(t, err)
	assert.Equal(t, "xé", s)

	_, err = NewList[uint32](1, 2).ToString()
	assert.Equal(t, ErrNotCharList, err)

	signed, err := NewList[int8]('o', 'k').ToString()
	require.NoError(t, err)
	assert.Equal(t, "ok", signed)
}

type testChar uint8

func TestListToStringNamedChar(t *testing.T) {
	v, _ := NewView([]byte{'W', 'M', 0xe9}, 0)
	u := NewUnpacker(v)
	l := UnpackPrimitives[testChar](u, 3)
	require.NoError(t, u.Err())

	s, err := l.ToString()
	require.NoError(t, err)
	assert.Equal(t, "WMé", s)

	empty, err := List[testChar]{}.ToString()
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestPackListGeneric(t *testing.T) {
	p := NewPacker()
	require.NoError(t, PackList(p, []testStr{newTestStr("ab"), newTestStr("c")}))
	assert.Equal(t, []byte{2, 'a', 'b', 1, 'c'}, p.Bytes())

	// raw bytes are written as they are
	p = NewPacker()
	require.NoError(t, PackList(p, [][]byte{{1, 2}, {3}}))
	assert.Equal(t, []byte{1, 2, 3}, p.Bytes())

	p = NewPacker()
	require.NoError(t, PackList(p, []uint16{1, 0x0201}))
	assert.Equal(t, []byte{1, 0, 1, 2}, p.Bytes())

	p = NewPacker()
	assert.Error(t, PackList(p, []interface{}{map[string]int{}}))
}

func TestPackListUnions(t *testing.T) {
	p := NewPacker()
	require.NoError(t, PackList(p, []Union{{Raw: []byte{1, 2, 3, 4}}, {Raw: []byte{5, 6}}}))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, p.Bytes())

	// self-packing values behind an interface too
	p = NewPacker()
	require.NoError(t, PackList(p, []interface{}{Union{Raw: []byte{7}}, []byte{8}}))
	assert.Equal(t, []byte{7, 8}, p.Bytes())
}

func TestPackStructs(t *testing.T) {
	p := NewPacker()
	PackStructs(p, []testStr{newTestStr("ab"), newTestStr("c")})
	assert.Equal(t, []byte{2, 'a', 'b', 1, 'c'}, p.Bytes())

	p = NewPacker()
	PackStructs[testStr](p, nil)
	assert.Empty(t, p.Bytes())
}

func TestUnion(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	v, _ := NewView(data, 0)
	un := UnpackUnion(NewUnpacker(v), 20)

	u8 := NewUnpacker(un.View())
	data8 := UnpackPrimitives[int8](u8, 20)
	require.NoError(t, u8.Err())
	for i, b := range data8.Items {
		assert.Equal(t, int8(i), b)
	}

	u32 := NewUnpacker(un.View())
	data32 := UnpackPrimitives[uint32](u32, 5)
	require.NoError(t, u32.Err())
	assert.Equal(t, uint32(0x03020100), data32.Items[0])
	assert.Equal(t, uint32(0x07060504), data32.Items[1])
	assert.Equal(t, uint32(0x0b0a0908), data32.Items[2])

	p := NewPacker()
	un.Pack(p)
	assert.Equal(t, data, p.Bytes())
}
