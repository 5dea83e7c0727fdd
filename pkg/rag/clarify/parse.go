package clarify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hof-chatbot-be/pkg/rag/template"
)

var ordinals = []struct {
	phrases []string
	index   int
}{
	{[]string{"첫 번째", "첫번째", "1번", "첫번"}, 0},
	{[]string{"두 번째", "두번째", "2번"}, 1},
	{[]string{"세 번째", "세번째", "3번"}, 2},
}

// ParseTemplateReply resolves a free-text reply to a template clarification.
// Explicit keyword match wins over ordinal-position phrases; returns false
// when neither applies.
func ParseTemplateReply(reply string) (string, bool) {
	if id, ok := template.MatchKeyword(reply); ok {
		return id, true
	}

	defs := template.All()
	for _, ord := range ordinals {
		for _, phrase := range ord.phrases {
			if strings.Contains(reply, phrase) && ord.index < len(defs) {
				return defs[ord.index].ID, true
			}
		}
	}

	return "", false
}

var (
	isoPeriodRe = regexp.MustCompile(`(\d{4})[-./년]\s?(\d{1,2})`)
	bareMonthRe = regexp.MustCompile(`(\d{1,2})월`)
)

// ParsePeriodReply normalizes a period phrase to YYYY-MM. A bare month like
// "7월" resolves against now: the most recent such month, never a future one.
func ParsePeriodReply(reply string, now time.Time) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return "", false
	}

	switch {
	case strings.Contains(trimmed, "이번 달"), strings.Contains(trimmed, "이번달"):
		return now.Format("2006-01"), true
	case strings.Contains(trimmed, "지난 달"), strings.Contains(trimmed, "지난달"), strings.Contains(trimmed, "저번달"):
		return now.AddDate(0, -1, 0).Format("2006-01"), true
	}

	if m := isoPeriodRe.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return fmt.Sprintf("%04d-%02d", year, month), true
		}
		return "", false
	}

	if m := bareMonthRe.FindStringSubmatch(trimmed); m != nil {
		month, _ := strconv.Atoi(m[1])
		if month < 1 || month > 12 {
			return "", false
		}
		year := now.Year()
		if month > int(now.Month()) {
			year--
		}
		return fmt.Sprintf("%04d-%02d", year, month), true
	}

	return "", false
}
