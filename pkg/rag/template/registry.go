// Package template holds the canonical query template catalog: which data
// partitions a question can target and the Korean vocabulary users reach for
// when naming them.
package template

import (
	"strings"

	"hof-chatbot-be/pkg/vectorstore"
)

// Canonical template identifiers. These are stable keys stored in
// conversation state and ambiguity rules.
const (
	Compensation = "compensation"
	Policy       = "policy"
	Override     = "override"
)

// Definition describes one template: display label, matching vocabulary and
// the document types it maps to at search time.
type Definition struct {
	ID          string
	Label       string
	Description string
	// Keywords match a user reply or query loosely (substring).
	Keywords []string
	// TriggerPhrases are explicit "only this" forms that settle the
	// template without further clarification.
	TriggerPhrases []string
	DocTypes       []string
}

var definitions = []Definition{
	{
		ID:             Compensation,
		Label:          "수수료",
		Description:    "계약별 수수료 내역과 지급 기준",
		Keywords:       []string{"수수료", "커미션", "수당"},
		TriggerPhrases: []string{"수수료만", "수수료 내역만", "커미션만"},
		DocTypes:       []string{vectorstore.DocTypeCommission},
	},
	{
		ID:             Policy,
		Label:          "시책",
		Description:    "프로모션 시책과 달성 조건",
		Keywords:       []string{"시책", "프로모션", "인센티브"},
		TriggerPhrases: []string{"시책만", "프로모션만"},
		DocTypes:       []string{vectorstore.DocTypePolicy},
	},
	{
		ID:             Override,
		Label:          "오버라이드",
		Description:    "조직 실적에 따른 오버라이드 수당",
		Keywords:       []string{"오버라이드", "조직수당"},
		TriggerPhrases: []string{"오버라이드만"},
		DocTypes:       []string{vectorstore.DocTypeOverride},
	},
}

// All returns the catalog in canonical presentation order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ByID looks a template up by its canonical identifier.
func ByID(id string) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// ForDocType returns the template a document type belongs to.
func ForDocType(docType string) (Definition, bool) {
	for _, d := range definitions {
		for _, dt := range d.DocTypes {
			if dt == docType {
				return d, true
			}
		}
	}
	return Definition{}, false
}

// MatchKeyword finds the first template whose label or keyword appears in
// text. Catalog order breaks ties.
func MatchKeyword(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}
	for _, d := range definitions {
		if strings.Contains(lower, strings.ToLower(d.Label)) {
			return d.ID, true
		}
		for _, kw := range d.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return d.ID, true
			}
		}
	}
	return "", false
}

// MatchTrigger reports whether text carries an explicit "only this template"
// phrase, and which template it names.
func MatchTrigger(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}
	for _, d := range definitions {
		for _, phrase := range d.TriggerPhrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				return d.ID, true
			}
		}
	}
	return "", false
}
