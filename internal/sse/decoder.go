package sse

import (
	"strings"
	"unicode/utf8"
)

// frameDelimiter terminates a frame. Chunk boundaries bear no relationship to
// frame boundaries, so the delimiter may arrive split across any number of
// chunks.
const frameDelimiter = "\n\n"

// Decoder turns an arbitrary sequence of byte chunks into a sequence of
// complete frames. It owns a buffer of bytes received but not yet resolved
// into a frame; a complete frame is always extracted before Feed returns, so
// the buffer never holds one at rest. A Decoder instance belongs to a single
// stream and is not safe for concurrent use.
type Decoder struct {
	// tail holds a trailing byte sequence that is not yet a complete UTF-8
	// rune. It is prepended to the next chunk instead of being decoded into
	// replacement characters.
	tail []byte
	buf  string
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk to the buffer and extracts every complete frame found.
// Any number of frames may result from one chunk, including zero; a partial
// frame stays buffered for the next call.
func (d *Decoder) Feed(chunk []byte) []Frame {
	data := chunk
	if len(d.tail) > 0 {
		data = append(d.tail, chunk...)
		d.tail = nil
	}
	complete, tail := splitIncompleteRune(data)
	d.tail = tail
	d.buf += string(complete)

	var frames []Frame
	for {
		idx := strings.Index(d.buf, frameDelimiter)
		if idx < 0 {
			return frames
		}
		raw := d.buf[:idx]
		d.buf = d.buf[idx+len(frameDelimiter):]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f, ok := parseFrame(raw)
		if !ok {
			// Unparseable frames flow to the translator, which reports
			// them without stopping the stream.
			f = Frame{Data: raw}
		}
		frames = append(frames, f)
	}
}

// Flush signals end of stream. A leftover frame whose final line is complete
// is returned even though the closing delimiter never arrived; a leftover
// that ends mid-line or mid-rune is a partial frame and yields
// ErrIncompleteFrame. Returns (nil, nil) when the buffer is clean.
func (d *Decoder) Flush() (*Frame, error) {
	if len(d.tail) > 0 {
		return nil, ErrIncompleteFrame
	}
	raw := d.buf
	d.buf = ""
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	if !strings.HasSuffix(raw, "\n") {
		return nil, ErrIncompleteFrame
	}
	f, ok := parseFrame(strings.TrimSuffix(raw, "\n"))
	if !ok {
		f = Frame{Data: raw}
	}
	return &f, nil
}

// splitIncompleteRune cuts data so that the returned head is decodable text
// and the returned tail is the byte prefix of a multi-byte rune whose
// remaining bytes have not arrived yet.
func splitIncompleteRune(data []byte) (head, tail []byte) {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		b := data[i]
		if b < utf8.RuneSelf {
			break
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(data[i:]) {
				return data[:i], append([]byte(nil), data[i:]...)
			}
			break
		}
	}
	return data, nil
}
