package sse

import (
	"errors"
	"fmt"
)

// Sentinel errors for stream-level failures
var (
	ErrIncompleteFrame = errors.New("stream ended with a partial frame in the buffer")
	ErrNilBody         = errors.New("response has no body")
)

// TransportError wraps a failure of the underlying byte transport. It is
// fatal to the in-flight stream: no further events are delivered after one
// is reported.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a single malformed frame or payload. It is scoped to
// one frame: the stream continues after it is reported.
type DecodeError struct {
	Event  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("decode %q frame: %s", e.Event, e.Reason)
	}
	return fmt.Sprintf("decode frame: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProtocolViolation reports data that is well-formed at the byte level but
// breaks a protocol rule, such as a duplicate session_id event or an
// unterminated trailing frame at end of stream. Fatal only controls whether
// the stream can continue past it.
type ProtocolViolation struct {
	Reason string
	Fatal  bool
	Err    error
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

func (e *ProtocolViolation) Unwrap() error { return e.Err }
