package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failed fetch by the stage that failed. Every failure carries exactly one Kind.
type Kind int

const (
	ResolutionError Kind = iota + 1
	ConnectError
	TlsHandshakeError
	WriteError
	ReadError
	MalformedResponseError
	AllocationError
)

func (k Kind) String() string {
	switch k {
	case ResolutionError:
		return "resolution error"
	case ConnectError:
		return "connect error"
	case TlsHandshakeError:
		return "TLS handshake error"
	case WriteError:
		return "write error"
	case ReadError:
		return "read error"
	case MalformedResponseError:
		return "malformed response"
	case AllocationError:
		return "allocation error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error lets a Kind be used as an errors.Is target, eg errors.Is(err, ResolutionError).
func (k Kind) Error() string { return k.String() }

// Error is a failure of one fetch stage. It wraps the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Ensure classifies err as kind unless it already carries a Kind, which is kept.
// A nil err stays nil.
func Ensure(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return New(kind, op, err)
}
