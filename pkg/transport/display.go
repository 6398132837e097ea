package transport

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDisplay = errors.New("invalid display")
	ErrInvalidAuth    = errors.New("invalid xauth")
)

// Display is a parsed display name of the form
// [protocol/][host]:display[.screen].
type Display struct {
	Protocol string
	Host     string
	Number   int
	Screen   int
}

func (o Display) String() string {
	var b strings.Builder
	if o.Protocol != "" {
		b.WriteString(o.Protocol)
		b.WriteByte('/')
	}
	fmt.Fprintf(&b, "%s:%d.%d", o.Host, o.Number, o.Screen)
	return b.String()
}

// ParseDisplay parses name. An empty name falls back to $DISPLAY.
func ParseDisplay(name string) (Display, error) {
	if name == "" {
		name = os.Getenv("DISPLAY")
	}
	if name == "" {
		return Display{}, errors.Wrap(ErrInvalidDisplay, "DISPLAY is not set")
	}

	var d Display
	rest := name
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		d.Protocol = rest[:i]
		rest = rest[i+1:]
	}

	colon := strings.LastIndex(rest, ":")
	if colon < 0 {
		return Display{}, errors.Wrapf(ErrInvalidDisplay, "missing ':' in %q", name)
	}
	d.Host = rest[:colon]
	rest = rest[colon+1:]

	number := rest
	if dot := strings.Index(rest, "."); dot >= 0 {
		number = rest[:dot]
		screen, err := strconv.Atoi(rest[dot+1:])
		if err != nil || screen < 0 {
			return Display{}, errors.Wrapf(ErrInvalidDisplay, "bad screen in %q", name)
		}
		d.Screen = screen
	}

	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return Display{}, errors.Wrapf(ErrInvalidDisplay, "bad display number in %q", name)
	}
	d.Number = n

	return d, nil
}

// AuthInfo is an authorization protocol name and its opaque data.
type AuthInfo struct {
	Name string
	Data []byte
}

// ParseAuth splits "NAME:DATA" at the first colon.
func ParseAuth(s string) (*AuthInfo, error) {
	i := strings.Index(s, ":")
	if i < 0 {
		return nil, ErrInvalidAuth
	}
	return &AuthInfo{Name: s[:i], Data: []byte(s[i+1:])}, nil
}
