package transport

// ConnError is the error state of a connection. Zero means healthy.
type ConnError int

const (
	ConnOK ConnError = iota
	ConnSocketError
	ConnExtensionNotSupported
	ConnMemoryInsufficient
	ConnRequestLengthExceeded
	ConnDisplayParseError
	ConnInvalidScreen
	ConnFDPassingFailed
)

var connErrorReasons = map[ConnError]string{
	ConnSocketError:           "I/O error on X socket",
	ConnExtensionNotSupported: "X extension not supported",
	ConnMemoryInsufficient:    "Insufficient memory",
	ConnRequestLengthExceeded: "Request length exceeds maximum",
	ConnDisplayParseError:     "Error parsing display string",
}

// Reason returns the fixed description of the error code. Codes without a
// description of their own are reported as unknown.
func (o ConnError) Reason() string {
	if r, ok := connErrorReasons[o]; ok {
		return r
	}
	return "Unknown connection error."
}

func (o ConnError) String() string {
	if o == ConnOK {
		return "ok"
	}
	return o.Reason()
}
