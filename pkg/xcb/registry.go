package xcb

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/wire"
)

// Event is any decoded event.
type Event interface {
	Header() *wire.Response
}

// Error is a decoded server error. It is returned as the failure of the
// operation it belongs to.
type Error interface {
	error
	Header() *wire.Response
	ErrorCode() uint8
}

type (
	EventFunc func(data []byte) (Event, error)
	ErrorFunc func(data []byte) (Error, error)
	SetupFunc func(data []byte) (wire.Struct, error)

	// ExtensionFactory builds the request API of an extension bound to a
	// connection.
	ExtensionFactory func(ext *Extension) interface{}
)

// ExtensionKey identifies an extension by its protocol name.
type ExtensionKey struct {
	Name string
}

func (o ExtensionKey) String() string {
	return o.Name
}

type binding struct {
	factory ExtensionFactory
	events  map[uint8]EventFunc
	errors  map[uint8]ErrorFunc
}

// Registry maps protocol modules to their decoders. It is filled once
// during startup and passed to every connection; lookups afterwards only
// take the read lock.
//
// Core tables are keyed by absolute code. Extension tables are keyed by
// the code relative to the first event or error the server assigned to
// the extension.
type Registry struct {
	sync.RWMutex

	core       *binding
	setup      SetupFunc
	extensions map[ExtensionKey]*binding
}

func NewRegistry() *Registry {
	return &Registry{
		extensions: map[ExtensionKey]*binding{},
	}
}

func newBinding(factory ExtensionFactory, events map[uint8]EventFunc, errs map[uint8]ErrorFunc) *binding {
	b := &binding{
		factory: factory,
		events:  map[uint8]EventFunc{},
		errors:  map[uint8]ErrorFunc{},
	}
	for k, v := range events {
		b.events[k] = v
	}
	for k, v := range errs {
		b.errors[k] = v
	}
	return b
}

// RegisterCore registers the core protocol. Registering again replaces the
// previous registration.
func (o *Registry) RegisterCore(factory ExtensionFactory, setup SetupFunc, events map[uint8]EventFunc, errs map[uint8]ErrorFunc) error {
	if factory == nil {
		return errors.Wrap(ErrInvalidRegistration, "core extension factory is nil")
	}
	if setup == nil {
		return errors.Wrap(ErrInvalidRegistration, "setup decoder is nil")
	}

	o.Lock()
	defer o.Unlock()

	o.core = newBinding(factory, events, errs)
	o.setup = setup
	return nil
}

// RegisterExtension registers an extension under key. Registering the same
// key again replaces the previous registration.
func (o *Registry) RegisterExtension(key ExtensionKey, factory ExtensionFactory, events map[uint8]EventFunc, errs map[uint8]ErrorFunc) error {
	if factory == nil {
		return errors.Wrapf(ErrInvalidRegistration, "extension factory of %s is nil", key.Name)
	}
	if key.Name == "" {
		return errors.Wrap(ErrInvalidRegistration, "extension name is empty")
	}

	o.Lock()
	defer o.Unlock()

	o.extensions[key] = newBinding(factory, events, errs)
	return nil
}

func (o *Registry) CoreRegistered() bool {
	o.RLock()
	defer o.RUnlock()

	return o.core != nil && o.setup != nil
}

// Keys returns the registered extensions sorted by name.
func (o *Registry) Keys() []ExtensionKey {
	o.RLock()
	defer o.RUnlock()

	keys := make([]ExtensionKey, 0, len(o.extensions))
	for k := range o.extensions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

func (o *Registry) coreBinding() (*binding, SetupFunc, bool) {
	o.RLock()
	defer o.RUnlock()

	if o.core == nil || o.setup == nil {
		return nil, nil, false
	}
	return o.core, o.setup, true
}

func (o *Registry) extension(key ExtensionKey) (*binding, bool) {
	o.RLock()
	defer o.RUnlock()

	b, ok := o.extensions[key]
	return b, ok
}

func (o *Registry) coreEvent(code uint8) (EventFunc, bool) {
	o.RLock()
	defer o.RUnlock()

	if o.core == nil {
		return nil, false
	}
	f, ok := o.core.events[code]
	return f, ok
}

func (o *Registry) coreError(code uint8) (ErrorFunc, bool) {
	o.RLock()
	defer o.RUnlock()

	if o.core == nil {
		return nil, false
	}
	f, ok := o.core.errors[code]
	return f, ok
}

// EventName returns the name of a decoded event: the value of its
// EventName method when it has one, its type name otherwise.
func EventName(e Event) string {
	if n, ok := e.(interface{ EventName() string }); ok {
		return n.EventName()
	}
	return typeName(e)
}
