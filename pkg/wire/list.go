package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Primitive lists every scalar that can be decoded from a list in a single
// bulk pass.
type Primitive interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// List is a fixed-length, homogeneous sequence decoded from the wire.
type List[T any] struct {
	Items   []T
	Bufsize int
}

// NewList wraps items that are about to be packed.
func NewList[T any](items ...T) List[T] {
	return List[T]{Items: items}
}

func (o List[T]) Len() int {
	return len(o.Items)
}

func (o List[T]) At(i int) T {
	return o.Items[i]
}

func (o List[T]) String() string {
	return fmt.Sprint(o.Items)
}

// ToString converts a list of single-byte characters into a string. The
// bytes are interpreted as latin1.
func (o List[T]) ToString() (string, error) {
	raw, ok := any(o.Items).([]byte)
	if !ok {
		items := reflect.ValueOf(o.Items)
		switch items.Type().Elem().Kind() {
		case reflect.Uint8:
			raw = make([]byte, items.Len())
			for i := range raw {
				raw[i] = byte(items.Index(i).Uint())
			}
		case reflect.Int8:
			raw = make([]byte, items.Len())
			for i := range raw {
				raw[i] = byte(items.Index(i).Int())
			}
		default:
			return "", ErrNotCharList
		}
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return b.String(), nil
}

// UnpackPrimitives decodes count scalars of type T in one pass.
func UnpackPrimitives[T Primitive](u *Unpacker, count int) List[T] {
	var zero T
	width := binary.Size(zero)
	raw := u.Sub(count * width)
	if u.Err() != nil {
		return List[T]{}
	}

	items := make([]T, count)
	if count > 0 {
		if err := binary.Read(bytes.NewReader(raw.Bytes()), Order, items); err != nil {
			u.err = err
			return List[T]{}
		}
	}
	return List[T]{Items: items, Bufsize: count * width}
}

// UnpackStructs decodes count variable-width structs, each starting where
// the previous one ended.
func UnpackStructs[T any, PT interface {
	*T
	Struct
}](u *Unpacker, count int) List[T] {
	base := u.Pos()
	items := make([]T, count)
	for i := range items {
		if err := UnpackFrom(u, PT(&items[i])); err != nil {
			if u.err == nil {
				u.err = err
			}
			return List[T]{}
		}
	}
	return List[T]{Items: items, Bufsize: u.Pos() - base}
}

// PackPrimitives bulk-encodes a homogeneous scalar sequence.
func PackPrimitives[T Primitive](p *Packer, items []T) {
	if len(items) == 0 {
		return
	}
	// binary.Write only fails on types without a fixed size, which the
	// Primitive constraint rules out.
	_ = binary.Write(p, Order, items)
}

// Packable is anything that writes its own encoding. Every Struct is one,
// and so is Union.
type Packable interface {
	Pack(p *Packer)
}

// PackList concatenates the encoding of every item. Items that pack
// themselves do so, byte slices are taken as already encoded, anything else
// must be a fixed-size value.
func PackList[T any](p *Packer, items []T) error {
	for i := range items {
		if s, ok := any(&items[i]).(Packable); ok {
			s.Pack(p)
			continue
		}

		switch v := any(items[i]).(type) {
		case Packable:
			v.Pack(p)
		case []byte:
			p.PutBytes(v)
		case string:
			p.PutBytes([]byte(v))
		default:
			if err := binary.Write(p, Order, v); err != nil {
				return errors.Errorf("can't pack list item %d of type %T: %v", i, v, err)
			}
		}
	}
	return nil
}

// PackStructs concatenates the encoding of every struct. Unlike PackList it
// cannot fail.
func PackStructs[T any, PT interface {
	*T
	Struct
}](p *Packer, items []T) {
	for i := range items {
		PT(&items[i]).Pack(p)
	}
}
