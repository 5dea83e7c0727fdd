// Package prompt assembles the answer-generation prompt from retrieved
// records.
package prompt

import (
	"fmt"
	"strings"

	"hof-chatbot-be/pkg/vectorstore"
)

// Builder renders retrieved matches and the user's question into one
// grounded prompt.
type Builder struct {
	query   string
	matches []vectorstore.Match
}

func NewBuilder(query string, matches []vectorstore.Match) *Builder {
	return &Builder{query: query, matches: matches}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *Builder) writeReferenceMaterial(prompt *strings.Builder) {
	prompt.WriteString("<reference_material>\n")
	for i, m := range b.matches {
		prompt.WriteString(fmt.Sprintf("[기록 %d] 종류=%s", i+1, m.Metadata.DocType))
		if m.Metadata.Period != "" {
			prompt.WriteString(" 기간=" + m.Metadata.Period)
		}
		if m.Metadata.Company != "" {
			prompt.WriteString(" 보험사=" + m.Metadata.Company)
		}
		prompt.WriteString("\n")
		prompt.WriteString(m.Document)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *Builder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a compensation assistant for Korean insurance planners.\n")
	prompt.WriteString("Answer the user's question using ONLY the reference material above.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *Builder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Answer in polite Korean (해요체).\n")
	prompt.WriteString("2. When amounts are involved, show the numbers you used and the arithmetic.\n")
	prompt.WriteString("3. Never invent records; if the material does not contain the answer, say so honestly.\n")
	prompt.WriteString("4. Mention the period (월) a figure belongs to when citing it.\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *Builder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now provide your answer based on the reference material:")
}
