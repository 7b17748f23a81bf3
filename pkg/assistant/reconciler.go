package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lekha-gateway/internal/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInFlight   = errors.New("a send is already pending for this conversation")
	ErrUnknownSession = errors.New("unknown session")
)

// Reconciler owns the client-side view of the conversation state: the known
// session list, the currently open message list and the active session
// pointer. The backend is authoritative for the existence of synced sessions;
// local entries are authoritative only until the backend acknowledges them.
// Every mutation re-saves the full envelope to the durable cache.
type Reconciler struct {
	gw    Gateway
	store EnvelopeStore
	log   logger.ILogger

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	sessions []*ChatSession
	current  []Message
	activeID *string // LocalId of the open session
	inFlight map[string]bool
}

func NewReconciler(gw Gateway, store EnvelopeStore, log logger.ILogger) *Reconciler {
	r := &Reconciler{
		gw:       gw,
		store:    store,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
		inFlight: make(map[string]bool),
	}
	r.hydrate()
	return r
}

// hydrate restores state from the durable cache. The cache is read exactly
// once, at construction.
func (r *Reconciler) hydrate() {
	if r.store != nil {
		if env, ok := r.store.Load(); ok {
			r.sessions = env.Sessions
			r.current = env.ActiveSession
			r.activeID = env.ActiveSessionId
		}
	}
	if len(r.current) == 0 {
		r.current = []Message{welcomeMessage()}
	}
}

// Send appends the user's message optimistically, forwards the turn and
// appends the reply. A failed turn is never dropped: the normalized error text
// comes back as a visible assistant message, so the returned message is the
// reply either way. Only client-side conditions (empty text, a send already
// pending for this conversation) return an error.
func (r *Reconciler) Send(ctx context.Context, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	r.mu.Lock()
	key := ""
	if r.activeID != nil {
		key = *r.activeID
	}
	if r.inFlight[key] {
		r.mu.Unlock()
		return nil, ErrSendInFlight
	}
	r.inFlight[key] = true

	userMsg := Message{Id: "user-" + r.newID(), Role: RoleUser, Content: text}
	r.current = append(r.current, userMsg)

	var conversationID *string
	if s := r.activeSessionLocked(); s != nil {
		conversationID = s.RemoteId
	}
	r.persistLocked()
	r.mu.Unlock()

	reply, err := r.gw.SendChat(ctx, text, conversationID)

	r.mu.Lock()
	defer r.mu.Unlock()
	defer delete(r.inFlight, key)

	var botMsg Message
	var remoteID *string
	if err != nil {
		r.log.Warn("reconciler", "chat turn failed", map[string]interface{}{"error": err.Error()})
		botMsg = Message{Id: "bot-" + r.newID(), Role: RoleAssistant, Content: errorText(err)}
	} else {
		botMsg = r.replyMessage(reply)
		remoteID = reply.ConversationID
	}
	r.current = append(r.current, botMsg)

	r.registerTurnLocked(remoteID)
	r.persistLocked()
	return &botMsg, nil
}

func (r *Reconciler) replyMessage(reply *Reply) Message {
	msg := Message{Id: "bot-" + r.newID(), Role: RoleAssistant}
	if reply.Kind == KindImage {
		msg.Content = imagePlaceholder
		msg.ImageURL = reply.ImageURL
		msg.InlineImage = reply.InlineImage
	} else {
		msg.Content = reply.Text
	}
	return msg
}

// registerTurnLocked updates the session list after a reply (success or
// failure) arrived. A new conversation is registered the moment its first
// reply lands, under a freshly assigned local id; the backend id, once
// supplied, is bound at most once and the local id stays the stable key.
func (r *Reconciler) registerTurnLocked(remoteID *string) {
	s := r.activeSessionLocked()
	if s == nil {
		localID := r.newID()
		s = &ChatSession{
			LocalId:   localID,
			CreatedAt: r.now(),
			RemoteId:  remoteID,
		}
		r.sessions = append(r.sessions, s)
		r.activeID = &s.LocalId
	} else if s.RemoteId == nil && remoteID != nil {
		s.RemoteId = remoteID
	}
	s.Messages = cloneMessages(r.current)
	s.Title = DeriveTitle(s.Messages)
}

// ReloadSessions replaces the synced part of the session list with the
// backend's summaries and keeps never-synced local drafts: the backend is
// authoritative for existence, the cache only for drafts it has not seen.
func (r *Reconciler) ReloadSessions(ctx context.Context) error {
	summaries, err := r.gw.ListSessions(ctx)
	if err != nil {
		r.log.Warn("reconciler", "failed to load sessions", map[string]interface{}{"error": err.Error()})
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var merged []*ChatSession
	for _, s := range r.sessions {
		if s.RemoteId == nil {
			merged = append(merged, s)
		}
	}
	for _, sum := range summaries {
		title := sum.Title
		if title == "" {
			title = "Chat"
		}
		if existing := r.findByRemoteLocked(sum.ConversationID); existing != nil {
			existing.Title = title
			merged = append(merged, existing)
			continue
		}
		remoteID := sum.ConversationID
		createdAt, ok := parseTimestamp(sum.CreatedAt)
		if !ok {
			createdAt, _ = parseTimestamp(sum.UpdatedAt)
		}
		merged = append(merged, &ChatSession{
			LocalId:   remoteID,
			Title:     title,
			CreatedAt: createdAt,
			RemoteId:  &remoteID,
		})
	}
	r.sessions = merged

	// The open session may have been deleted on another device.
	if r.activeID != nil && r.findLocked(*r.activeID) == nil {
		r.resetCurrentLocked()
	}

	r.persistLocked()
	return nil
}

// Open makes a session active. Loaded messages are shown as-is; an
// acknowledged session with no cached messages is fetched lazily and the
// result cached into the session record.
func (r *Reconciler) Open(ctx context.Context, localID string) ([]Message, error) {
	r.mu.Lock()
	s := r.findLocked(localID)
	if s == nil {
		r.mu.Unlock()
		return nil, ErrUnknownSession
	}
	r.activeID = &s.LocalId

	if len(s.Messages) > 0 {
		r.current = cloneMessages(s.Messages)
		r.persistLocked()
		out := cloneMessages(r.current)
		r.mu.Unlock()
		return out, nil
	}

	if s.RemoteId == nil {
		r.current = []Message{welcomeMessage()}
		r.persistLocked()
		out := cloneMessages(r.current)
		r.mu.Unlock()
		return out, nil
	}

	remoteID := *s.RemoteId
	r.mu.Unlock()

	history, err := r.gw.SessionMessages(ctx, remoteID)
	if err != nil {
		r.log.Warn("reconciler", "failed to load conversation", map[string]interface{}{
			"conversationId": remoteID, "error": err.Error(),
		})
		return nil, err
	}

	messages := mapHistory(remoteID, history)

	r.mu.Lock()
	defer r.mu.Unlock()
	s.Messages = messages
	r.current = cloneMessages(messages)
	r.persistLocked()
	return cloneMessages(messages), nil
}

// Delete removes a session. An acknowledged session is deleted on the backend
// first; local removal happens only after a non-error answer, an "already
// gone" answer counting as success. A never-synced session is removed
// immediately with no network call.
func (r *Reconciler) Delete(ctx context.Context, localID string) error {
	r.mu.Lock()
	s := r.findLocked(localID)
	if s == nil {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	remoteID := s.RemoteId
	r.mu.Unlock()

	if remoteID != nil {
		if err := r.gw.DeleteSession(ctx, *remoteID); err != nil {
			var ge *GatewayError
			alreadyGone := errors.As(err, &ge) &&
				(ge.Status == 404 || ge.Status == 410)
			if !alreadyGone {
				r.log.Warn("reconciler", "delete failed", map[string]interface{}{
					"conversationId": *remoteID, "error": err.Error(),
				})
				return err
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sessions[:0]
	for _, sess := range r.sessions {
		if sess.LocalId != localID {
			kept = append(kept, sess)
		}
	}
	r.sessions = kept
	if r.activeID != nil && *r.activeID == localID {
		r.resetCurrentLocked()
	}
	r.persistLocked()
	return nil
}

// NewChat archives the open conversation (if it has a user turn) and resets
// to the welcome state.
func (r *Reconciler) NewChat() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hasUserMessage(r.current) {
		if s := r.activeSessionLocked(); s != nil {
			s.Messages = cloneMessages(r.current)
			s.Title = DeriveTitle(s.Messages)
		} else {
			s := &ChatSession{
				LocalId:   r.newID(),
				CreatedAt: r.now(),
				Messages:  cloneMessages(r.current),
			}
			s.Title = DeriveTitle(s.Messages)
			r.sessions = append(r.sessions, s)
		}
	}

	r.resetCurrentLocked()
	r.persistLocked()
}

// Reset drops all local state, e.g. on sign-out.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = nil
	r.resetCurrentLocked()
	r.persistLocked()
}

// Sessions returns the known sessions, most recently created first.
func (r *Reconciler) Sessions() []ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Current returns the open message list.
func (r *Reconciler) Current() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneMessages(r.current)
}

// ActiveSessionId returns the local id of the open session, or nil for a new
// conversation.
func (r *Reconciler) ActiveSessionId() *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeID == nil {
		return nil
	}
	id := *r.activeID
	return &id
}

func (r *Reconciler) activeSessionLocked() *ChatSession {
	if r.activeID == nil {
		return nil
	}
	return r.findLocked(*r.activeID)
}

func (r *Reconciler) findLocked(localID string) *ChatSession {
	for _, s := range r.sessions {
		if s.LocalId == localID {
			return s
		}
	}
	return nil
}

func (r *Reconciler) findByRemoteLocked(remoteID string) *ChatSession {
	for _, s := range r.sessions {
		if s.RemoteId != nil && *s.RemoteId == remoteID {
			return s
		}
	}
	return nil
}

func (r *Reconciler) resetCurrentLocked() {
	r.current = []Message{welcomeMessage()}
	r.activeID = nil
}

func (r *Reconciler) persistLocked() {
	if r.store == nil {
		return
	}
	r.store.Save(&Envelope{
		Sessions:        r.sessions,
		ActiveSession:   r.current,
		ActiveSessionId: r.activeID,
	})
}

func mapHistory(conversationID string, history []HistoryMessage) []Message {
	messages := make([]Message, 0, len(history))
	for idx, h := range history {
		role := RoleAssistant
		if h.Role == string(RoleUser) {
			role = RoleUser
		}
		msg := Message{
			Id:      fmt.Sprintf("msg-%s-%d", conversationID, idx),
			Role:    role,
			Content: h.Content,
		}
		if h.Type == "image" {
			msg.Content = imagePlaceholder
			if isAbsoluteHTTPURL(h.Content) {
				msg.ImageURL = h.Content
			} else if h.Content != "" {
				msg.InlineImage = h.Content
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

func hasUserMessage(messages []Message) bool {
	for _, m := range messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

func cloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

func errorText(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return "Something went wrong. Please check your connection and try again."
}

// parseTimestamp accepts the backend's timestamp formats: RFC3339 with or
// without timezone suffix.
func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
