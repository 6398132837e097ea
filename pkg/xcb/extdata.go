package xcb

import (
	"context"

	"github.com/pkg/errors"

	"boscoin.io/xcb/pkg/wire"
)

// QueryExtensionOpcode is the core request asking the server about an
// extension.
const QueryExtensionOpcode uint8 = 98

// ExtensionInfo is what the server reported about an extension.
type ExtensionInfo struct {
	wire.Reply
	Present     bool
	MajorOpcode uint8
	FirstEvent  uint8
	FirstError  uint8
}

func (o *ExtensionInfo) Unpack(u *wire.Unpacker) error {
	o.ResponseType = u.Uint8()
	u.Skip(1)
	o.Sequence = u.Uint16()
	o.Length = u.Uint32()
	o.Present = u.Bool()
	o.MajorOpcode = u.Uint8()
	o.FirstEvent = u.Uint8()
	o.FirstError = u.Uint8()
	u.Skip(20)
	return u.Err()
}

func (o *ExtensionInfo) Pack(p *wire.Packer) {
	p.PutUint8(o.ResponseType)
	p.Pad(1)
	p.PutUint16(o.Sequence)
	p.PutUint32(o.Length)
	p.PutBool(o.Present)
	p.PutUint8(o.MajorOpcode)
	p.PutUint8(o.FirstEvent)
	p.PutUint8(o.FirstError)
	p.Pad(20)
}

func decodeExtensionInfo(data []byte) (*ExtensionInfo, error) {
	info := &ExtensionInfo{}
	if _, err := wire.UnpackBytes(info, data); err != nil {
		return nil, err
	}
	return info, nil
}

func queryExtensionRequest(name string) []byte {
	p := wire.NewPacker()
	p.PutUint8(QueryExtensionOpcode)
	p.Pad(3)
	p.PutUint16(uint16(len(name)))
	p.Pad(2)
	p.PutBytes([]byte(name))
	p.Align(4)
	return p.Bytes()
}

// ExtensionData asks the server about an extension once and caches the
// answer. When the extension is present and registered, its event and error
// codes become known to Hoist.
func (o *Connection) ExtensionData(ctx context.Context, key ExtensionKey) (*ExtensionInfo, error) {
	if v, ok := o.extensions.Get(key); ok {
		return v.(*ExtensionInfo), nil
	}

	cookie, err := SendReplyRequest(o.coreExt, QueryExtensionOpcode, queryExtensionRequest(key.Name), true, decodeExtensionInfo)
	if err != nil {
		return nil, err
	}
	info, err := cookie.Reply(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query extension %s", key.Name)
	}

	o.extensions.Add(key, info)
	o.log.Debug(
		"msg", "queried extension",
		"extension", key.Name,
		"present", info.Present,
		"major", info.MajorOpcode,
		"first-event", info.FirstEvent,
		"first-error", info.FirstError,
	)

	if !info.Present {
		return info, nil
	}
	if b, ok := o.registry.extension(key); ok {
		o.addRange(extensionRange{
			key:        key,
			firstEvent: info.FirstEvent,
			firstError: info.FirstError,
			binding:    b,
		})
	}
	return info, nil
}

// PresentExtension is ExtensionData failing with ErrExtensionNotPresent
// when the server lacks the extension.
func (o *Connection) PresentExtension(ctx context.Context, key ExtensionKey) (*ExtensionInfo, error) {
	info, err := o.ExtensionData(ctx, key)
	if err != nil {
		return nil, err
	}
	if !info.Present {
		return nil, errors.Wrap(ErrExtensionNotPresent, key.Name)
	}
	return info, nil
}
