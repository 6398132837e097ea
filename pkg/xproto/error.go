package xproto

import (
	"fmt"

	"boscoin.io/xcb/pkg/wire"
	"boscoin.io/xcb/pkg/xcb"
)

var errorNames = map[uint8]string{
	1:  "Request",
	2:  "Value",
	3:  "Window",
	4:  "Pixmap",
	5:  "Atom",
	6:  "Cursor",
	7:  "Font",
	8:  "Match",
	9:  "Drawable",
	10: "Access",
	11: "Alloc",
	12: "Colormap",
	13: "GContext",
	14: "IDChoice",
	15: "Name",
	16: "Length",
	17: "Implementation",
}

const (
	BadRequest uint8 = iota + 1
	BadValue
	BadWindow
	BadPixmap
	BadAtom
	BadCursor
	BadFont
	BadMatch
	BadDrawable
	BadAccess
	BadAlloc
	BadColormap
	BadGContext
	BadIDChoice
	BadName
	BadLength
	BadImplementation
)

// CoreError is a core protocol error. All of them share one layout.
type CoreError struct {
	wire.ErrorResponse
	Name string
}

func (o *CoreError) Error() string {
	return fmt.Sprintf(
		"%s error: sequence=%d bad-value=0x%x major=%d minor=%d",
		o.Name, o.Sequence, o.BadValue, o.MajorOpcode, o.MinorOpcode,
	)
}

func decodeError(data []byte) (xcb.Error, error) {
	e := &CoreError{}
	if _, err := wire.UnpackBytes(&e.ErrorResponse, data); err != nil {
		return nil, err
	}
	e.Name = errorNames[e.Code]
	return e, nil
}

// Errors is the core error table.
var Errors = func() map[uint8]xcb.ErrorFunc {
	m := map[uint8]xcb.ErrorFunc{}
	for code := range errorNames {
		m[code] = decodeError
	}
	return m
}()
