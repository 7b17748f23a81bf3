package assistant

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

// HTTPGateway talks to the gateway proxy over HTTP. All calls are single-shot,
// never retried.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.ILogger
}

func NewHTTPGateway(baseURL string, tokens TokenSource, log logger.ILogger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		tokens:  tokens,
		log:     log,
	}
}

func (g *HTTPGateway) SendChat(ctx context.Context, message string, conversationID *string) (*Reply, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"message":        message,
		"conversationId": conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := g.do(ctx, http.MethodPost, "/api/chat", payload)
	if err != nil {
		return nil, err
	}
	return ParseReply(body), nil
}

func (g *HTTPGateway) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	body, err := g.do(ctx, http.MethodGet, "/api/sessions", nil)
	if err != nil {
		return nil, err
	}

	var summaries []SessionSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return summaries, nil
}

func (g *HTTPGateway) SessionMessages(ctx context.Context, conversationID string) ([]HistoryMessage, error) {
	body, err := g.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return nil, err
	}

	var detail struct {
		Messages []HistoryMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("decode session detail: %w", err)
	}
	return detail.Messages, nil
}

func (g *HTTPGateway) DeleteSession(ctx context.Context, conversationID string) error {
	_, err := g.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(conversationID), nil)
	return err
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.tokens != nil {
		token, err := g.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &envelope)
		g.log.Warn("gateway", "request failed", map[string]interface{}{
			"method": method, "path": path, "status": res.StatusCode, "error": envelope.Error,
		})
		return nil, &GatewayError{Status: res.StatusCode, Message: envelope.Error}
	}

	return body, nil
}
