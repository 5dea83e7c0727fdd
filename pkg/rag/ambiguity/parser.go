package ambiguity

import (
	"strings"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/pkg/rag/template"
)

var emojiDigits = map[string]int{
	"1️⃣": 1, "2️⃣": 2, "3️⃣": 3, "4️⃣": 4, "5️⃣": 5,
	"6️⃣": 6, "7️⃣": 7, "8️⃣": 8, "9️⃣": 9,
}

// ParseReply resolves a user's answer to a clarification into the selected
// option's value. Priority order: bare 1-based digit, emoji digit glyph,
// substring match on an option's label or value, then an explicit template
// trigger phrase. Returns false when nothing matches and the caller should
// re-prompt or fall back to the original query.
func ParseReply(reply string, options []entity.ClarificationOption) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" || len(options) == 0 {
		return "", false
	}

	if len(trimmed) == 1 && trimmed[0] >= '1' && trimmed[0] <= '9' {
		idx := int(trimmed[0] - '0')
		if idx <= len(options) {
			return options[idx-1].Value, true
		}
		return "", false
	}

	for glyph, idx := range emojiDigits {
		if strings.Contains(trimmed, glyph) {
			if idx <= len(options) {
				return options[idx-1].Value, true
			}
			return "", false
		}
	}

	lower := strings.ToLower(trimmed)
	for _, opt := range options {
		if opt.Label != "" && strings.Contains(lower, strings.ToLower(opt.Label)) {
			return opt.Value, true
		}
		if opt.Value != "" && strings.Contains(lower, strings.ToLower(opt.Value)) {
			return opt.Value, true
		}
	}

	if id, ok := template.MatchTrigger(trimmed); ok {
		for _, opt := range options {
			if opt.Value == id {
				return id, true
			}
		}
	}

	return "", false
}
