// Package chat is the client for the chatflow server: it initiates streaming
// predictions, uploads attachments, and derives file URLs.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flowchat-ai/flowchat-cli/internal/auth"
	"github.com/flowchat-ai/flowchat-cli/internal/history"
	"github.com/flowchat-ai/flowchat-cli/internal/sse"
)

// Client issues chat requests against one server. Streaming calls run
// through the auth retry gate and then drive the SSE dispatcher over the
// response body. Safe for concurrent use; each stream owns its own decoder
// and accumulator.
type Client struct {
	baseURL    string
	streamHTTP *http.Client
	uploadHTTP *http.Client
	gate       *auth.RetryGate
	dispatcher *sse.Dispatcher
	log        zerolog.Logger
}

func NewClient(baseURL string, gate *auth.RetryGate, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout on the streaming call: answers legitimately take
		// minutes. Cancellation comes from the request context.
		streamHTTP: &http.Client{},
		uploadHTTP: &http.Client{Timeout: 60 * time.Second},
		gate:       gate,
		dispatcher: sse.NewDispatcher(log),
		log:        log,
	}
}

// StreamPrediction initiates a chat stream and delivers every translated
// event to h in arrival order. A fatal failure (transport, auth) is reported
// once via h.OnError and returned; frame-scoped failures are reported and the
// stream continues.
func (c *Client) StreamPrediction(ctx context.Context, req PendingRequest, h sse.Handler) error {
	body, err := json.Marshal(predictionBody{
		ChatflowID: req.ChatflowID,
		SessionID:  req.SessionID,
		Question:   req.Question,
		Uploads:    req.Uploads,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	requestID := uuid.NewString()
	endpoint := fmt.Sprintf("%s/api/v1/prediction/%s", c.baseURL, url.PathEscape(req.ChatflowID))
	build := func(ctx context.Context, token auth.TokenPair) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")
		httpReq.Header.Set("X-Request-Id", requestID)
		if v := token.AuthorizationValue(); v != "" {
			httpReq.Header.Set("Authorization", v)
		}
		return httpReq, nil
	}

	c.log.Debug().Str("request_id", requestID).Str("chatflow", req.ChatflowID).Msg("starting prediction stream")
	resp, err := c.gate.Do(ctx, build, c.streamHTTP.Do)
	if err != nil {
		var authErr *auth.AuthenticationError
		if !errors.As(err, &authErr) {
			err = &sse.TransportError{Err: err}
		}
		h.OnError(err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		terr := &sse.TransportError{Err: fmt.Errorf("prediction rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))}
		h.OnError(terr)
		return terr
	}
	return c.dispatcher.Run(ctx, resp.Body, h)
}

// Chat runs StreamPrediction with a history accumulator teed in front of h
// and returns the accumulated message. The message is complete when
// msg.Sealed() reports true; on mid-stream failure it holds everything
// decoded before the failure.
func (c *Client) Chat(ctx context.Context, req PendingRequest, h sse.Handler) (*history.Message, error) {
	acc := history.NewAccumulator()
	err := c.StreamPrediction(ctx, req, acc.Handler(h))
	return acc.Message(), err
}

// UploadResult is the response to an attachment upload.
type UploadResult struct {
	FileID  string `json:"file_id"`
	Message string `json:"message"`
}

// UploadFile posts one attachment as multipart form data. The file content
// is buffered so the request can be rebuilt if the gate retries it.
func (c *Client) UploadFile(ctx context.Context, chatflowID, sessionID, name string, r io.Reader) (*UploadResult, error) {
	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if err := w.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("failed to write session field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/attachments/%s/%s", c.baseURL, url.PathEscape(chatflowID), url.PathEscape(sessionID))
	build := func(ctx context.Context, token auth.TokenPair) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(form.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("failed to create upload request: %w", err)
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		if v := token.AuthorizationValue(); v != "" {
			req.Header.Set("Authorization", v)
		}
		return req, nil
	}

	resp, err := c.gate.Do(ctx, build, c.uploadHTTP.Do)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

// FileURL returns the canonical URL of an uploaded file.
func (c *Client) FileURL(fileID string) string {
	return fmt.Sprintf("%s/api/v1/files/%s", c.baseURL, url.PathEscape(fileID))
}

// DownloadURL returns the URL that forces a download of the file.
func (c *Client) DownloadURL(fileID string) string {
	return c.FileURL(fileID) + "?download=true"
}

// ThumbnailURL returns the URL of a thumbnail rendition of the file.
func (c *Client) ThumbnailURL(fileID string, size int) string {
	return c.FileURL(fileID) + "?size=" + strconv.Itoa(size)
}
