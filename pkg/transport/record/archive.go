package record

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

const (
	archiveMagic      = 'X'
	archiveHeaderSize = 8
	maxFrameSize      = 10 * 1024 * 1024
)

var ErrInvalidArchive = errors.New("invalid session archive")

// frame is the unit of an archive; exactly one of the fields is set.
type frame struct {
	Session *Session `msgpack:"session"`
	Entry   *Entry   `msgpack:"entry"`
}

// packHeader writes the frame header:
//   0   : magic
//   1-3 : flags, unused
//   4-7 : payload length
func packHeader(w io.Writer, n int) error {
	var header [archiveHeaderSize]byte
	header[0] = archiveMagic
	binary.BigEndian.PutUint32(header[4:], uint32(n))
	_, err := w.Write(header[:])
	return err
}

func writeFrame(w io.Writer, f *frame) error {
	var b bytes.Buffer
	encoder := msgpack.NewEncoder(&b)
	if err := encoder.Encode(f); err != nil {
		return err
	}

	if err := packHeader(w, b.Len()); err != nil {
		return err
	}
	_, err := w.Write(b.Bytes())
	return err
}

// readFrame returns io.EOF when r ends on a frame boundary.
func readFrame(r io.Reader) (*frame, error) {
	var header [archiveHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrap(ErrInvalidArchive, err.Error())
	}
	if header[0] != archiveMagic {
		return nil, errors.Wrapf(ErrInvalidArchive, "bad magic 0x%02x", header[0])
	}

	n := binary.BigEndian.Uint32(header[4:])
	if n >= maxFrameSize {
		return nil, errors.Wrapf(ErrInvalidArchive, "frame of %d bytes is too large", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(ErrInvalidArchive, err.Error())
	}

	f := &frame{}
	if err := msgpack.Unmarshal(payload, f); err != nil {
		return nil, errors.Wrap(ErrInvalidArchive, err.Error())
	}
	return f, nil
}

// Export writes a session and all of its entries to w.
func (o *Store) Export(w io.Writer, id string) error {
	session, err := o.Session(id)
	if err != nil {
		return err
	}
	if err := writeFrame(w, &frame{Session: session}); err != nil {
		return err
	}

	for _, kind := range Kinds {
		entries, err := o.Entries(id, kind)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := writeFrame(w, &frame{Entry: e}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Import reads an archive written by Export and returns the imported
// session. The session keeps its id.
func (o *Store) Import(r io.Reader) (*Session, error) {
	first, err := readFrame(r)
	if err == io.EOF {
		return nil, errors.Wrap(ErrInvalidArchive, "empty archive")
	} else if err != nil {
		return nil, err
	}
	if first.Session == nil {
		return nil, errors.Wrap(ErrInvalidArchive, "archive does not start with a session")
	}
	session := first.Session

	for {
		f, err := readFrame(r)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if f.Entry == nil {
			return nil, errors.Wrap(ErrInvalidArchive, "unexpected session frame")
		}
		if err := o.PutEntry(session.ID, f.Entry); err != nil {
			return nil, err
		}
	}

	if err := o.PutSession(session); err != nil {
		return nil, err
	}
	return session, nil
}
