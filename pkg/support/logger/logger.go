package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-logfmt/logfmt"
	isatty "github.com/mattn/go-isatty"
)

const (
	Default = iota
	Red
	Yellow
	White
	Black
)

// https://en.wikipedia.org/wiki/ANSI_escape_code#Colors
var (
	resetColorBytes = []byte("\x1b[39;49;22m")

	fgColorBytes = [][]byte{
		[]byte("\x1b[39m"),
		[]byte(fmt.Sprintf("\x1b[%dm", 91)),
		[]byte(fmt.Sprintf("\x1b[%dm", 93)),
		[]byte(fmt.Sprintf("\x1b[%dm", 97)),
		[]byte(fmt.Sprintf("\x1b[%dm", 90)),
	}
	bgColorBytes = [][]byte{
		[]byte("\x1b[49m"),
		[]byte(fmt.Sprintf("\x1b[%dm", 101)),
		[]byte(fmt.Sprintf("\x1b[%dm", 103)),
		[]byte(fmt.Sprintf("\x1b[%dm", 107)),
		[]byte(fmt.Sprintf("\x1b[%dm", 100)),
	}
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DBG",
	LevelInfo:  "INF",
	LevelWarn:  "WRN",
	LevelError: "ERR",
}

func (o Level) String() string {
	return levelNames[o]
}

// ParseLevel accepts the short names (DBG, INF, WRN, ERR) and the long
// ones (debug, info, warn, error).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "dbg", "debug":
		return LevelDebug, nil
	case "inf", "info":
		return LevelInfo, nil
	case "wrn", "warn":
		return LevelWarn, nil
	case "err", "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	outputLock sync.RWMutex
	output     io.Writer = os.Stdout
	threshold            = LevelDebug
)

// SetOutput redirects every logger, including ones created before the call.
func SetOutput(w io.Writer) {
	outputLock.Lock()
	defer outputLock.Unlock()
	output = w
}

// SetLevel drops records below l.
func SetLevel(l Level) {
	outputLock.Lock()
	defer outputLock.Unlock()
	threshold = l
}

type sharedWriter struct{}

func (sharedWriter) Write(p []byte) (int, error) {
	outputLock.RLock()
	defer outputLock.RUnlock()
	return output.Write(p)
}

func enabled(l Level) bool {
	outputLock.RLock()
	defer outputLock.RUnlock()
	return l >= threshold
}

func colored() bool {
	outputLock.RLock()
	defer outputLock.RUnlock()
	if f, ok := output.(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

type Logger struct {
	logger log.Logger
}

func NewLogger(module string) *Logger {
	var logger log.Logger

	format := log.TimestampFormat(func() time.Time { return time.Now().UTC() }, time.RFC3339)

	logger = NewCustomLogger(log.NewSyncWriter(sharedWriter{}))
	logger = log.With(logger, "module", module)
	logger = log.With(logger, "ts", format, "caller", log.Caller(5))

	return &Logger{
		logger: logger,
	}
}

// With returns a logger that adds keyvals to every record.
func (o *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{logger: log.With(o.logger, keyvals...)}
}

func (o *Logger) log(l Level, keyvals []interface{}) {
	if !enabled(l) {
		return
	}
	o.logger.Log(append(keyvals, "level", l.String())...)
}

func (o *Logger) Debug(keyvals ...interface{}) {
	o.log(LevelDebug, keyvals)
}

func (o *Logger) Info(keyvals ...interface{}) {
	o.log(LevelInfo, keyvals)
}

func (o *Logger) Warn(keyvals ...interface{}) {
	o.log(LevelWarn, keyvals)
}

func (o *Logger) Error(keyvals ...interface{}) {
	o.log(LevelError, keyvals)
}

type customLogger struct {
	io.Writer
}

type logfmtEncoder struct {
	*logfmt.Encoder
	buf bytes.Buffer
}

func (l *logfmtEncoder) Reset() {
	l.Encoder.Reset()
	l.buf.Reset()
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		var enc logfmtEncoder
		enc.Encoder = logfmt.NewEncoder(&enc.buf)
		return &enc
	},
}

func NewCustomLogger(w io.Writer) log.Logger {
	return &customLogger{w}
}

func (l *customLogger) Log(keyvals ...interface{}) error {
	enc := encoderPool.Get().(*logfmtEncoder)
	enc.Reset()
	defer encoderPool.Put(enc)

	var msg string
	var module string
	var level string
	var ts string
	var caller string

	for i := 0; i < len(keyvals)-1; i += 2 {
		switch keyvals[i] {
		case "level":
			level = fmt.Sprint(keyvals[i+1])
		case "module":
			module = fmt.Sprint(keyvals[i+1])
		case "ts":
			if v, ok := keyvals[i+1].(fmt.Stringer); ok {
				ts = v.String()
			}
		case "msg":
			msg = fmt.Sprint(keyvals[i+1])
		case "caller":
			if v, ok := keyvals[i+1].(fmt.Stringer); ok {
				caller = v.String()
			}
		}
	}

	color := colored()
	if color {
		switch level {
		case "DBG":
			enc.buf.Write(fgColorBytes[Black])
		case "WRN":
			enc.buf.Write(fgColorBytes[Yellow])
		case "ERR":
			enc.buf.Write(fgColorBytes[Red])
		}
	}

	enc.buf.WriteString(fmt.Sprintf("%s [%s] %7s: %-40s ", ts, level, strings.ToUpper(module), msg))

	for i := 0; i < len(keyvals)-1; i += 2 {
		switch keyvals[i] {
		case "level", "module", "ts", "msg", "caller":
		default:
			enc.buf.WriteString(fmt.Sprintf("%s%v ", key(keyvals[i], color), keyvals[i+1]))
		}
	}

	enc.buf.WriteString(fmt.Sprintf("%s%s", key("caller", color), caller))
	if color {
		enc.buf.Write(resetColorBytes)
	}

	if err := enc.EndRecord(); err != nil {
		return err
	}

	if _, err := l.Write(enc.buf.Bytes()); err != nil {
		return err
	}

	return nil
}

func key(name interface{}, color bool) string {
	if !color {
		return fmt.Sprintf("%s=", name)
	}
	return fmt.Sprintf("%s%s=%s", fgColorBytes[Black], name, fgColorBytes[Default])
}
