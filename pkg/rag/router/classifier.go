package router

import (
	"strings"

	"hof-chatbot-be/pkg/rag/response"
)

// instantPattern answers a message lexically, before any model is consulted.
type instantPattern struct {
	keywords []string
	answer   string
}

var instantPatterns = []instantPattern{
	{
		keywords: []string{"안녕", "하이", "헬로", "반가워", "반갑습니다"},
		answer:   response.Greeting,
	},
	{
		keywords: []string{"고마워", "고맙습니다", "감사"},
		answer:   response.Thanks,
	},
	{
		keywords: []string{"도움말", "사용법", "뭘 할 수 있", "무엇을 할 수 있", "어떻게 써"},
		answer:   response.Help,
	},
}

// classifyInstant matches greetings and FAQ-style messages without touching
// the network. Returns the canned answer when a pattern hits.
func classifyInstant(message string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", false
	}
	// Long messages are real questions even when they open with a greeting.
	if len([]rune(trimmed)) > 20 {
		return "", false
	}
	for _, p := range instantPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(trimmed, kw) {
				return p.answer, true
			}
		}
	}
	return "", false
}
