package sse

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// Handler receives the events and errors produced while draining one stream.
// Callbacks are invoked synchronously from the read loop, in arrival order;
// a slow handler therefore throttles the transport read rate.
type Handler interface {
	// OnEvent delivers one translated event. Ownership of the event passes
	// to the handler.
	OnEvent(ev StreamEvent)

	// OnError reports a frame-scoped failure (DecodeError, non-fatal
	// ProtocolViolation) or the single fatal error that ends the stream.
	OnError(err error)
}

// HandlerFuncs adapts plain functions to Handler. A nil func is a no-op.
type HandlerFuncs struct {
	Event func(ev StreamEvent)
	Error func(err error)
}

func (h HandlerFuncs) OnEvent(ev StreamEvent) {
	if h.Event != nil {
		h.Event(ev)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

const readBufferSize = 4096

// Dispatcher drives the read loop over a response body: bytes through a
// Decoder, frames through Translate, events to the caller's Handler. Each
// stream gets its own Decoder, so concurrent requests share no state.
type Dispatcher struct {
	log zerolog.Logger
}

func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

// Run drains body until end of stream, cancellation, or a fatal error. A
// transport read failure is reported once via OnError and returned; a
// translation failure for one frame is reported via OnError and the loop
// continues. After ctx is canceled no callback is invoked.
func (d *Dispatcher) Run(ctx context.Context, body io.Reader, h Handler) error {
	if body == nil {
		terr := &TransportError{Err: ErrNilBody}
		h.OnError(terr)
		return terr
	}

	dec := NewDecoder()
	buf := make([]byte, readBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if err := d.deliver(ctx, dec.Feed(buf[:n]), h); err != nil {
				return err
			}
		}
		switch {
		case readErr == io.EOF:
			return d.finalize(ctx, dec, h)
		case readErr != nil:
			if err := ctx.Err(); err != nil {
				// A read aborted by cancellation is not reported.
				return err
			}
			terr := &TransportError{Err: readErr}
			d.log.Debug().Err(readErr).Msg("stream transport failed")
			h.OnError(terr)
			return terr
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, frames []Frame, h Handler) error {
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := Translate(f)
		if err != nil {
			d.log.Warn().Err(err).Str("event", f.Event).Msg("skipping malformed frame")
			h.OnError(err)
			continue
		}
		h.OnEvent(ev)
	}
	return nil
}

// finalize flushes the decoder at end of stream. A trailing complete frame is
// still delivered; a trailing partial frame is a fatal protocol violation,
// reported after everything that did decode has been handed over.
func (d *Dispatcher) finalize(ctx context.Context, dec *Decoder, h Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := dec.Flush()
	if err != nil {
		pv := &ProtocolViolation{Reason: "stream ended mid-frame", Fatal: true, Err: err}
		h.OnError(pv)
		return pv
	}
	if f == nil {
		return nil
	}
	ev, err := Translate(*f)
	if err != nil {
		h.OnError(err)
		return nil
	}
	h.OnEvent(ev)
	return nil
}
