package chat

import (
	"encoding/base64"
	"fmt"
)

// Upload is one file attachment carried inline with a prediction request.
type Upload struct {
	// Data is a base64 data URL, e.g. "data:text/plain;base64,...".
	Data string `json:"data"`
	Type string `json:"type"`
	Name string `json:"name"`
	Mime string `json:"mime"`
}

// NewFileUpload encodes raw file bytes as an inline attachment.
func NewFileUpload(name, mime string, data []byte) Upload {
	return Upload{
		Data: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)),
		Type: "file",
		Name: name,
		Mime: mime,
	}
}

// PendingRequest describes one chat call. Constructed once per call and never
// mutated after dispatch. An empty SessionID asks the server to create a new
// session; the assigned id arrives as a session_id event on the stream.
type PendingRequest struct {
	ChatflowID string
	SessionID  string
	Question   string
	Uploads    []Upload
}

// predictionBody is the wire shape of the chat-stream initiation POST.
type predictionBody struct {
	ChatflowID string   `json:"chatflow_id"`
	SessionID  string   `json:"sessionId"`
	Question   string   `json:"question"`
	Uploads    []Upload `json:"uploads,omitempty"`
}
