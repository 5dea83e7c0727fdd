package clarify

import (
	"testing"
	"time"

	"hof-chatbot-be/pkg/rag/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickFirst(n int) int { return 0 }

func TestBuildAsksSingleHighestPriorityGap(t *testing.T) {
	builder := NewBuilder(pickFirst)

	tests := []struct {
		name     string
		intent   *intent.Intent
		wantType string
	}{
		{
			name:     "missing template wins over everything",
			intent:   &intent.Intent{Type: intent.TypeDataQuery, Query: "얼마 받았어?"},
			wantType: TypeTemplate,
		},
		{
			name: "template known, period missing",
			intent: &intent.Intent{
				Type: intent.TypeDataQuery, Query: "수수료", TemplateType: "compensation",
			},
			wantType: TypePeriod,
		},
		{
			name: "template and period known, field missing",
			intent: &intent.Intent{
				Type: intent.TypeDataQuery, Query: "수수료",
				TemplateType: "compensation", Period: "2026-07",
			},
			wantType: TypeField,
		},
		{
			name: "only calculation missing",
			intent: &intent.Intent{
				Type: intent.TypeDataQuery, Query: "수수료",
				TemplateType: "compensation", Period: "2026-07", Fields: []string{"지급액"},
			},
			wantType: TypeGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := builder.Build(tt.intent)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, c.Type)
			assert.NotEmpty(t, c.Question)
		})
	}
}

func TestBuildReturnsFalseWhenComplete(t *testing.T) {
	builder := NewBuilder(pickFirst)

	_, ok := builder.Build(&intent.Intent{
		Type: intent.TypeDataQuery, Query: "수수료 합계",
		TemplateType: "compensation", Period: "2026-07",
		Fields: []string{"지급액"}, CalculationType: "total",
	})

	assert.False(t, ok)
}

func TestTemplateClarificationAlwaysOffersCanonicalOptions(t *testing.T) {
	builder := NewBuilder(pickFirst)

	c, ok := builder.Build(&intent.Intent{Type: intent.TypeDataQuery, Query: "내역"})

	require.True(t, ok)
	require.Len(t, c.Options, 3)
	assert.Equal(t, "compensation", c.Options[0].Value)
	assert.Equal(t, "policy", c.Options[1].Value)
	assert.Equal(t, "override", c.Options[2].Value)
	assert.Equal(t, "수수료", c.Options[0].Label)
}

func TestPhrasingSelectionIsInjectable(t *testing.T) {
	first := NewBuilder(func(n int) int { return 0 })
	second := NewBuilder(func(n int) int { return 1 })

	in := &intent.Intent{Type: intent.TypeDataQuery, Query: "내역"}

	c1, _ := first.Build(in)
	c2, _ := second.Build(in)

	assert.NotEqual(t, c1.Question, c2.Question)
}

func TestBuildCombinedJoinsAllGaps(t *testing.T) {
	builder := NewBuilder(pickFirst)

	c, ok := builder.BuildCombined(&intent.Intent{Type: intent.TypeDataQuery, Query: "내역"})

	require.True(t, ok)
	assert.Equal(t, TypeTemplate, c.Type)
	assert.Contains(t, c.Question, "확인할 항목")
	assert.Contains(t, c.Question, "조회 기간")
	assert.Len(t, c.Options, 3)
}

func TestParseTemplateReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		ok    bool
	}{
		{"explicit keyword", "수수료요", "compensation", true},
		{"keyword beats ordinal", "두 번째 말고 시책이요", "policy", true},
		{"ordinal first", "첫 번째요", "compensation", true},
		{"ordinal second", "두번째", "policy", true},
		{"ordinal third", "3번이요", "override", true},
		{"nothing matches", "잘 모르겠어요", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTemplateReply(tt.reply)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePeriodReply(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		reply string
		want  string
		ok    bool
	}{
		{"iso form", "2026-07", "2026-07", true},
		{"korean year month", "2026년 7월", "2026-07", true},
		{"bare month in the past", "7월이요", "2026-07", true},
		{"bare month not yet reached resolves to last year", "12월", "2025-12", true},
		{"this month", "이번달", "2026-08", true},
		{"last month", "지난달이요", "2026-07", true},
		{"invalid month", "13월", "", false},
		{"no period", "글쎄요", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePeriodReply(tt.reply, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
