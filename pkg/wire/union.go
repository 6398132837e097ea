package wire

// Union holds a fixed-size byte range that can be read through several
// overlapping layouts. Which layout is meaningful is decided by a field
// outside the union.
type Union struct {
	Raw []byte
}

// UnpackUnion copies the next size bytes into a Union.
func UnpackUnion(u *Unpacker, size int) Union {
	return Union{Raw: u.Bytes(size)}
}

// View returns a view over the union's bytes for decoding one layout.
func (o Union) View() View {
	return View{data: o.Raw, size: len(o.Raw)}
}

func (o Union) Pack(p *Packer) {
	p.PutBytes(o.Raw)
}
