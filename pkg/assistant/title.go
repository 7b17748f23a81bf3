package assistant

import "strings"

const (
	maxTitleRunes    = 28
	titleEllipsis    = "…"
	titlePlaceholder = "New chat"

	imagePlaceholder = "[Generated image]"
)

// DeriveTitle titles a conversation with its first user-authored message,
// truncated to a fixed length. A conversation with no user message yet gets
// the placeholder.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > maxTitleRunes {
			return string(runes[:maxTitleRunes]) + titleEllipsis
		}
		return text
	}
	return titlePlaceholder
}
