package wire

// Struct is implemented by every typed wire object. Unpack reads the fields
// in declaration order from the cursor; Pack writes them back in the same
// order, producing exactly the bytes Unpack consumed.
type Struct interface {
	Unpack(u *Unpacker) error
	Pack(p *Packer)
}

// Sized is embedded into structs to remember how many bytes their last
// decode consumed.
type Sized struct {
	bufsize int
}

// Bufsize returns the number of bytes consumed when the struct was decoded.
func (o *Sized) Bufsize() int {
	return o.bufsize
}

func (o *Sized) setBufsize(n int) {
	o.bufsize = n
}

type sizer interface {
	setBufsize(int)
}

// UnpackFrom decodes s at the cursor position and records its bufsize.
func UnpackFrom(u *Unpacker, s Struct) error {
	base := u.Pos()
	if err := s.Unpack(u); err != nil {
		return err
	}
	if err := u.Err(); err != nil {
		return err
	}
	if v, ok := s.(sizer); ok {
		v.setBufsize(u.Pos() - base)
	}
	return nil
}

// Unpack decodes s from the start of view and returns the number of bytes
// it consumed.
func Unpack(s Struct, view View) (int, error) {
	u := NewUnpacker(view)
	if err := UnpackFrom(u, s); err != nil {
		return 0, err
	}
	return u.Pos(), nil
}

// UnpackBytes is Unpack over the whole of data.
func UnpackBytes(s Struct, data []byte) (int, error) {
	view, err := NewView(data, 0)
	if err != nil {
		return 0, err
	}
	return Unpack(s, view)
}

// Pack returns the wire encoding of s.
func Pack(s Struct) []byte {
	p := NewPacker()
	s.Pack(p)
	return p.Bytes()
}

// Decode allocates a T and decodes it from the start of data.
func Decode[T any, PT interface {
	*T
	Struct
}](data []byte) (PT, error) {
	s := PT(new(T))
	if _, err := UnpackBytes(s, data); err != nil {
		return nil, err
	}
	return s, nil
}
