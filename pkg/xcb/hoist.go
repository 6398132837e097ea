package xcb

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/wire"
)

// ClientMessageCode is the core event code of client messages. Messages
// whose discriminant is above wire.GenericMessageThreshold are decoded with
// it directly.
const ClientMessageCode uint8 = 33

// extensionRange maps the event and error codes the server assigned to an
// extension back to the extension's tables.
type extensionRange struct {
	key        ExtensionKey
	firstEvent uint8
	firstError uint8
	binding    *binding
}

func (o *Connection) addRange(r extensionRange) {
	o.rangesLock.Lock()
	defer o.rangesLock.Unlock()

	for i := range o.ranges {
		if o.ranges[i].key == r.key {
			o.ranges[i] = r
			return
		}
	}
	o.ranges = append(o.ranges, r)
}

// extensionEvent finds the extension whose event base is the closest one
// at or below code.
func (o *Connection) extensionEvent(code uint8) (EventFunc, bool) {
	o.rangesLock.RLock()
	defer o.rangesLock.RUnlock()

	var best *extensionRange
	for i := range o.ranges {
		r := &o.ranges[i]
		if r.firstEvent == 0 || r.firstEvent > code {
			continue
		}
		if best == nil || r.firstEvent > best.firstEvent {
			best = r
		}
	}
	if best == nil {
		return nil, false
	}
	f, ok := best.binding.events[code-best.firstEvent]
	return f, ok
}

func (o *Connection) extensionError(code uint8) (ErrorFunc, bool) {
	o.rangesLock.RLock()
	defer o.rangesLock.RUnlock()

	var best *extensionRange
	for i := range o.ranges {
		r := &o.ranges[i]
		if r.firstError == 0 || r.firstError > code {
			continue
		}
		if best == nil || r.firstError > best.firstError {
			best = r
		}
	}
	if best == nil {
		return nil, false
	}
	f, ok := best.binding.errors[code-best.firstError]
	return f, ok
}

// Hoist decodes a raw message from the event queue. Events are returned;
// errors are decoded and returned as the failure.
func (o *Connection) Hoist(data []byte) (Event, error) {
	if !o.registry.CoreRegistered() {
		return nil, ErrUnconfiguredDispatch
	}
	if len(data) < 1 {
		return nil, errors.Wrap(ErrMalformedResponse, "empty message")
	}

	kind := data[0]
	if kind == wire.KindError {
		return nil, o.decodeError(data)
	}

	var decode EventFunc
	var ok bool
	if kind > wire.GenericMessageThreshold {
		decode, ok = o.registry.coreEvent(ClientMessageCode)
	} else {
		code := kind & 0x7f
		if decode, ok = o.registry.coreEvent(code); !ok {
			decode, ok = o.extensionEvent(code)
		}
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEvent, "code %d", kind&0x7f)
	}

	event, err := decode(data)
	if err != nil {
		return nil, err
	}
	o.metrics.AddEvent(EventName(event))
	return event, nil
}

// decodeError turns raw error bytes into an Error. Codes without a
// registered decoder are decoded as a plain wire.ErrorResponse.
func (o *Connection) decodeError(data []byte) error {
	if len(data) < 2 {
		return errors.Wrap(ErrMalformedResponse, "short error")
	}

	code := data[1]
	decode, ok := o.registry.coreError(code)
	if !ok {
		decode, ok = o.extensionError(code)
	}
	if !ok {
		decode = decodeGenericError
	}

	xerr, err := decode(data)
	if err != nil {
		return err
	}

	o.metrics.AddError(code)
	o.log.Debug("msg", "server error", "code", code, "sequence", xerr.Header().Sequence)
	return xerr
}

func decodeGenericError(data []byte) (Error, error) {
	e := &wire.ErrorResponse{}
	if _, err := wire.UnpackBytes(e, data); err != nil {
		return nil, err
	}
	return e, nil
}

func typeName(v interface{}) string {
	name := fmt.Sprintf("%T", v)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
