package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lekha-gateway/internal/pkg/logger"
)

const (
	chatPath     = "/api/chat"
	sessionsPath = "/api/sessions"

	// Upstream bodies echoed into error envelopes are capped so a misbehaving
	// backend cannot flood the client with an HTML error page.
	maxEchoedBody = 300
)

// ChatForward is the outbound chat payload. ConversationID stays a pointer:
// null is significant and tells the backend to start a new conversation.
type ChatForward struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversationId"`
}

// Result is a successfully normalized upstream response: status was a success
// code and the body parsed as JSON. Payload is passed through unchanged.
type Result struct {
	Status  int
	Payload json.RawMessage
}

// Client forwards a single request to the conversation backend and normalizes
// the response. It holds no state across calls.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.ILogger
}

func New(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Configured reports whether a backend base address is set. Routes answer 500
// before any outbound call when it is not.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Chat forwards a chat turn. auth is attached verbatim when non-empty and
// never inspected.
func (c *Client) Chat(ctx context.Context, auth string, fwd ChatForward) (*Result, error) {
	payload, err := json.Marshal(fwd)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+chatPath, auth, payload)
}

// ListSessions forwards the sessions-list read.
func (c *Client) ListSessions(ctx context.Context, auth string) (*Result, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+sessionsPath, auth, nil)
}

// GetSession forwards the session-detail read.
func (c *Client) GetSession(ctx context.Context, auth, id string) (*Result, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+sessionsPath+"/"+url.PathEscape(id), auth, nil)
}

// DeleteSession forwards a session delete. A 200 or 204 upstream answer is
// success; anything else comes back as a normalized error.
func (c *Client) DeleteSession(ctx context.Context, auth, id string) error {
	target := c.baseURL + sessionsPath + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("upstream", "delete request failed", map[string]interface{}{"error": err.Error()})
		return &TransportError{Cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent || res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return normalizeFailure(res.StatusCode, body)
}

// ImageResult carries the raw upstream bytes for the image proxy. Normalization
// does not apply here: bytes and content type stream through untouched.
type ImageResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// FetchImage retrieves an image from an arbitrary absolute URL so the browser
// can render it same-origin. Callers validate the URL before this is reached.
func (c *Client) FetchImage(ctx context.Context, rawURL string) (*ImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("upstream", "image fetch failed", map[string]interface{}{"url": rawURL, "error": err.Error()})
		return nil, &TransportError{Cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &ImageResult{Status: res.StatusCode}, nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &ImageResult{Status: res.StatusCode, ContentType: contentType, Body: body}, nil
}

// do performs one outbound call and applies the normalization ladder: read the
// body as text first, then attempt JSON, then branch on upstream status.
func (c *Client) do(ctx context.Context, method, target, auth string, payload []byte) (*Result, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("upstream", "request failed", map[string]interface{}{"method": method, "error": err.Error()})
		return nil, &TransportError{Cause: err}
	}
	defer res.Body.Close()

	text, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}

	ok := res.StatusCode >= 200 && res.StatusCode <= 299

	var parsed json.RawMessage
	if len(bytes.TrimSpace(text)) == 0 {
		parsed = json.RawMessage(`{}`)
	} else if json.Valid(text) {
		parsed = json.RawMessage(text)
	} else {
		c.log.Warn("upstream", "response was not JSON", map[string]interface{}{
			"status": res.StatusCode,
			"body":   truncate(string(text), maxEchoedBody),
		})
		return nil, &ProtocolError{Status: res.StatusCode, Body: truncate(string(text), maxEchoedBody)}
	}

	if !ok {
		return nil, normalizeFailure(res.StatusCode, parsed)
	}

	return &Result{Status: res.StatusCode, Payload: parsed}, nil
}

// normalizeFailure surfaces the upstream-declared error message if present,
// else the raw body, else a generic status message.
func normalizeFailure(status int, body []byte) error {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			message = envelope.Error
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}
	if message == "" {
		message = truncate(string(bytes.TrimSpace(body)), maxEchoedBody)
	}
	if message == "" || message == "{}" {
		message = fmt.Sprintf("Backend returned %d", status)
	}
	return &UpstreamError{Status: status, Message: message}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
