package assistant

import (
	"encoding/json"
	"fmt"
	"net/url"
)

type ReplyKind string

const (
	KindText  ReplyKind = "text"
	KindImage ReplyKind = "image"
)

// Reply is the tagged response contract for one chat turn. The backend's
// payload is mapped into exactly one kind; consumers never sniff field shapes
// themselves.
type Reply struct {
	Kind           ReplyKind
	Text           string
	ImageURL       string
	InlineImage    string
	ConversationID *string
}

const fallbackReplyText = "Sorry, I couldn't process that."

// ParseReply maps a backend chat payload into the tagged Reply contract.
// The explicit tagged shape ({kind, text, imageUrl, inlineImage}) wins when
// present; the legacy shape ({type, data, content, image_url, imageBase64})
// is mapped through one rule: an image payload is a remote URL only when it
// parses as an absolute http(s) URL, otherwise it is inline data.
func ParseReply(raw []byte) *Reply {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return &Reply{Kind: KindText, Text: fallbackReplyText}
	}

	r := &Reply{}
	if cid, ok := m["conversationId"]; ok && cid != nil {
		s := stringify(cid)
		r.ConversationID = &s
	}

	switch getString(m, "kind") {
	case string(KindImage):
		r.Kind = KindImage
		r.Text = getString(m, "text")
		r.ImageURL = getString(m, "imageUrl")
		r.InlineImage = getString(m, "inlineImage")
		return r
	case string(KindText):
		r.Kind = KindText
		r.Text = getString(m, "text")
		if r.Text == "" {
			r.Text = fallbackReplyText
		}
		return r
	}

	// Legacy backend shape.
	if getString(m, "type") == "image" {
		r.Kind = KindImage
		payload := getString(m, "data")
		if isAbsoluteHTTPURL(payload) {
			r.ImageURL = payload
		} else if payload != "" {
			r.InlineImage = payload
		}
		if r.ImageURL == "" {
			r.ImageURL = getString(m, "image_url")
		}
		if r.InlineImage == "" {
			r.InlineImage = getString(m, "imageBase64")
		}
		return r
	}

	r.Kind = KindText
	if s := getString(m, "data"); s != "" {
		r.Text = s
	} else if s := getString(m, "content"); s != "" {
		r.Text = s
	} else {
		r.Text = fallbackReplyText
	}
	return r
}

// SessionSummary is one entry of the sessions-list read.
type SessionSummary struct {
	ConversationID string `json:"conversationId"`
	Title          string `json:"title"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// HistoryMessage is one persisted message record from the session-detail read.
type HistoryMessage struct {
	Role    string `json:"role"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func isAbsoluteHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
