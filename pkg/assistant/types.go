package assistant

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Immutable once appended. At most one of
// ImageURL / InlineImage is set; both empty means a plain text turn.
type Message struct {
	Id          string `json:"id"`
	Role        Role   `json:"role"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl,omitempty"`
	InlineImage string `json:"imageData,omitempty"`
}

// ChatSession is one conversation thread. LocalId is assigned at creation and
// never changes; RemoteId starts nil and is bound at most once, when the
// backend first acknowledges the session. A session with nil RemoteId has
// never round-tripped through the backend and exists only locally.
type ChatSession struct {
	LocalId   string    `json:"localId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	RemoteId  *string   `json:"remoteId"`
}

// Envelope is the single serialized unit written to the durable cache. It is
// saved as one atomic blob on every state change so the persisted shape always
// matches in-memory state.
type Envelope struct {
	Sessions        []*ChatSession `json:"sessions"`
	ActiveSession   []Message      `json:"activeSession"`
	ActiveSessionId *string        `json:"activeSessionId"`
}

// EnvelopeStore is the durable cache contract. Save is best-effort:
// implementations swallow storage failures rather than surfacing them, the
// cache is never a source of truth. Load reports absence via ok=false.
type EnvelopeStore interface {
	Save(env *Envelope)
	Load() (*Envelope, bool)
}

const welcomeMessageId = "welcome"

func welcomeMessage() Message {
	return Message{
		Id:      welcomeMessageId,
		Role:    RoleAssistant,
		Content: "Hi! I'm your invitation assistant. Describe your event—type, theme, and preferences—and I'll help create designs for you.",
	}
}
