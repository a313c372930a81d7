package sse

import "strings"

// Frame is one delimited unit of the wire protocol: an event name and a raw
// textual payload. Frames are produced by Decoder and consumed immediately by
// Translate; they are not retained.
type Frame struct {
	Event    string
	Data     string
	HasEvent bool
	HasData  bool
}

// parseFrame interprets the text between two delimiters as a frame. Lines
// prefixed "event:" name the event, lines prefixed "data:" carry payload;
// multiple data lines are joined with a newline. Unrecognized lines are
// ignored. Returns false for a frame with no recognized lines at all.
func parseFrame(raw string) (Frame, bool) {
	var f Frame
	var data []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			f.Event = strings.TrimSpace(line[len("event:"):])
			f.HasEvent = true
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(line[len("data:"):], " "))
			f.HasData = true
		}
	}
	if !f.HasEvent && !f.HasData {
		return Frame{}, false
	}
	f.Data = strings.Join(data, "\n")
	return f, true
}
