package common

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

type Encode func(v interface{}, w io.Writer) error

var DefaultEncodes = map[string]Encode{
	"json": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, false)
	},
	"prettyjson": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, true)
	},
	"yaml": func(v interface{}, w io.Writer) error {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	},
}

func jsonEncode(v interface{}, w io.Writer, pretty bool) error {
	e := json.NewEncoder(w)
	if pretty {
		e.SetIndent("", "  ")
	}

	return e.Encode(&v)
}

// FlagFormat is a pflag value selecting one of DefaultEncodes.
type FlagFormat struct {
	name   string
	encode Encode
}

var _ pflag.Value = (*FlagFormat)(nil)

func NewFlagFormat(name string) *FlagFormat {
	f := &FlagFormat{}
	if err := f.Set(name); err != nil {
		panic(err)
	}
	return f
}

func (f *FlagFormat) Type() string {
	return "format"
}

func (f *FlagFormat) String() string {
	return f.name
}

func (f *FlagFormat) Set(v string) error {
	encode, ok := DefaultEncodes[v]
	if !ok {
		return errors.Errorf("unknown format %q, one of {%s}", v, strings.Join(Formats(), ", "))
	}
	f.name = v
	f.encode = encode
	return nil
}

func (f *FlagFormat) Encode(v interface{}, w io.Writer) error {
	return f.encode(v, w)
}

func Formats() []string {
	var names []string
	for name := range DefaultEncodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
