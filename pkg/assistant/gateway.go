package assistant

import (
	"context"
	"fmt"
)

// TokenSource supplies the bearer credential for gateway calls. The identity
// provider is opaque: the token is attached verbatim and never decoded. An
// empty token means the call goes out unauthenticated; rejecting it is the
// backend's job.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Gateway is the reconciler's view of the proxy surface.
type Gateway interface {
	SendChat(ctx context.Context, message string, conversationID *string) (*Reply, error)
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	SessionMessages(ctx context.Context, conversationID string) ([]HistoryMessage, error)
	DeleteSession(ctx context.Context, conversationID string) error
}

// GatewayError is a non-success answer from the gateway, carrying the
// normalized error text from its failure envelope.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed (%d). Please try again.", e.Status)
}
