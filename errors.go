package godc

import (
	"errors"
	"fmt"
)

// Kind is the closed error taxonomy surfaced by every operation (spec §7).
// Callers switch on Kind, or use errors.Is against the sentinel values
// below; they never need to interpret an errno.
type Kind int

const (
	KindSuccess Kind = iota
	KindUnsupported
	KindInvalidArgs
	KindNoMemory
	KindCancelled
	KindTimeout
	KindIO
	KindProtocol
	KindDataFormat
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindUnsupported:
		return "unsupported"
	case KindInvalidArgs:
		return "invalid arguments"
	case KindNoMemory:
		return "no memory"
	case KindCancelled:
		return "cancelled"
	case KindTimeout:
		return "timeout"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindDataFormat:
		return "data format"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind, so callers can do errors.Is(err, godc.ErrTimeout)
// without reaching into the *Error wrapper.
var (
	ErrUnsupported = errors.New("unsupported")
	ErrInvalidArgs = errors.New("invalid arguments")
	ErrNoMemory    = errors.New("no memory")
	ErrCancelled   = errors.New("cancelled")
	ErrTimeout     = errors.New("timeout")
	ErrIO          = errors.New("io")
	ErrProtocol    = errors.New("protocol")
	ErrDataFormat  = errors.New("data format")
)

var kindSentinel = map[Kind]error{
	KindUnsupported: ErrUnsupported,
	KindInvalidArgs: ErrInvalidArgs,
	KindNoMemory:    ErrNoMemory,
	KindCancelled:   ErrCancelled,
	KindTimeout:     ErrTimeout,
	KindIO:          ErrIO,
	KindProtocol:    ErrProtocol,
	KindDataFormat:  ErrDataFormat,
}

// Error is the concrete error type returned by Device and Parser operations.
// Op names the failing operation (e.g. "device.read", "parser.samples_foreach")
// so two Protocol errors from different call sites don't look identical in logs.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	sentinel, ok := kindSentinel[e.Kind]
	if !ok {
		return e.Err
	}
	if e.Err != nil {
		return errors.Join(sentinel, e.Err)
	}
	return sentinel
}

// newErr constructs a wrapped *Error for the given operation and kind.
func newErr(op string, kind Kind, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf extracts the Kind from err, defaulting to KindIO for errors that
// did not originate inside this module (e.g. a raw transport error the
// caller surfaced directly).
func KindOf(err error) Kind {
	if err == nil {
		return KindSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}
