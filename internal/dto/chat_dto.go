package dto

// ChatRequest is the inbound body of POST /api/chat. ConversationID is a
// pointer because null is significant: it tells the backend to start a new
// conversation rather than resume one.
type ChatRequest struct {
	Message        string  `json:"message" validate:"required"`
	ConversationID *string `json:"conversationId"`
}
