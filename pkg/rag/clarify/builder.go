// Package clarify builds the follow-up question asked when a query cannot be
// answered as-is, and parses the user's reply to it.
package clarify

import (
	"math/rand"
	"strings"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/pkg/rag/intent"
	"hof-chatbot-be/pkg/rag/template"
)

// Clarification types, ordered by how much the missing piece matters.
// Template determines which data partition is searched at all, so it always
// wins.
const (
	TypeTemplate = "template"
	TypePeriod   = "period"
	TypeField    = "field"
	TypeGeneral  = "general"
)

// Clarification is one question to put back to the user.
type Clarification struct {
	Question string
	Type     string
	Options  []entity.ClarificationOption
	Priority int
}

// Question phrasing pools. One is picked per build so prompts do not read
// identically every turn.
var phrasings = map[string][]string{
	TypeTemplate: {
		"어떤 항목에 대해 알려드릴까요?",
		"다음 중 어떤 내역을 확인하시겠어요?",
		"어떤 종류의 내역을 찾으시나요?",
	},
	TypePeriod: {
		"어느 기간의 내역을 확인하시겠어요? (예: 7월, 2026-07)",
		"조회하실 기간을 알려주세요. (예: 지난달, 2026-07)",
	},
	TypeField: {
		"어떤 항목의 값이 궁금하신가요? (예: 지급액, 환수금)",
		"구체적으로 어떤 금액을 확인하시겠어요?",
	},
	TypeGeneral: {
		"조금 더 구체적으로 말씀해 주시겠어요?",
		"어떤 내용이 궁금하신지 좀 더 자세히 알려주세요.",
	},
}

// Builder assembles clarification questions. pick selects a phrasing index
// given the pool size; injectable so tests stay deterministic.
type Builder struct {
	pick func(n int) int
}

func NewBuilder(pick func(n int) int) *Builder {
	if pick == nil {
		pick = rand.Intn
	}
	return &Builder{pick: pick}
}

// Gaps lists what the intent is missing, highest priority first.
func Gaps(in *intent.Intent) []string {
	if in == nil {
		return []string{TypeGeneral}
	}
	var gaps []string
	if in.TemplateType == "" {
		gaps = append(gaps, TypeTemplate)
	}
	if in.Period == "" {
		gaps = append(gaps, TypePeriod)
	}
	if len(in.Fields) == 0 {
		gaps = append(gaps, TypeField)
	}
	if in.CalculationType == "" {
		gaps = append(gaps, TypeGeneral)
	}
	return gaps
}

// Resolvable reports whether a clarification question can close a gap in the
// intent at all.
func Resolvable(in *intent.Intent) bool {
	return len(Gaps(in)) > 0
}

// Build asks about exactly the single highest-priority gap. Returns false
// when the intent has no gaps.
func (b *Builder) Build(in *intent.Intent) (Clarification, bool) {
	gaps := Gaps(in)
	if len(gaps) == 0 {
		return Clarification{}, false
	}
	return b.forType(gaps[0], len(gaps)), true
}

// BuildCombined asks about every gap in one grammatically joined question.
// Only used when the caller explicitly wants a compound prompt.
func (b *Builder) BuildCombined(in *intent.Intent) (Clarification, bool) {
	gaps := Gaps(in)
	if len(gaps) == 0 {
		return Clarification{}, false
	}
	if len(gaps) == 1 {
		return b.forType(gaps[0], 1), true
	}

	labels := make([]string, 0, len(gaps))
	for _, g := range gaps {
		labels = append(labels, gapLabel(g))
	}
	question := strings.Join(labels, "와(과) ") + "을(를) 함께 알려주시겠어요?"

	c := Clarification{
		Question: question,
		Type:     gaps[0],
		Priority: len(gaps),
	}
	if gaps[0] == TypeTemplate {
		c.Options = templateOptions()
	}
	return c, true
}

func (b *Builder) forType(gapType string, priority int) Clarification {
	pool := phrasings[gapType]
	c := Clarification{
		Question: pool[b.pick(len(pool))],
		Type:     gapType,
		Priority: priority,
	}
	if gapType == TypeTemplate {
		c.Options = templateOptions()
	}
	return c
}

// templateOptions is always the same three canonical categories, in catalog
// order.
func templateOptions() []entity.ClarificationOption {
	defs := template.All()
	options := make([]entity.ClarificationOption, 0, len(defs))
	for _, d := range defs {
		options = append(options, entity.ClarificationOption{
			Value:       d.ID,
			Label:       d.Label,
			Description: d.Description,
		})
	}
	return options
}

func gapLabel(gapType string) string {
	switch gapType {
	case TypeTemplate:
		return "확인할 항목(수수료/시책/오버라이드)"
	case TypePeriod:
		return "조회 기간"
	case TypeField:
		return "궁금한 금액 항목"
	default:
		return "구체적인 질문 내용"
	}
}
