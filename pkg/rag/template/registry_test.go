package template

import (
	"testing"

	"hof-chatbot-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 3)

	ids := []string{all[0].ID, all[1].ID, all[2].ID}
	assert.Equal(t, []string{Compensation, Policy, Override}, ids)

	for _, d := range all {
		assert.NotEmpty(t, d.Label, d.ID)
		assert.NotEmpty(t, d.Keywords, d.ID)
		assert.NotEmpty(t, d.DocTypes, d.ID)
	}
}

func TestByID(t *testing.T) {
	d, ok := ByID(Policy)
	require.True(t, ok)
	assert.Equal(t, "시책", d.Label)

	_, ok = ByID("billing")
	assert.False(t, ok)
}

func TestForDocType(t *testing.T) {
	d, ok := ForDocType(vectorstore.DocTypeOverride)
	require.True(t, ok)
	assert.Equal(t, Override, d.ID)

	_, ok = ForDocType(vectorstore.DocTypeProfile)
	assert.False(t, ok)
}

func TestMatchKeyword(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"label", "이번달 수수료 알려줘", Compensation, true},
		{"synonym", "커미션 얼마야", Compensation, true},
		{"policy keyword", "프로모션 조건이 뭐야", Policy, true},
		{"override", "조직수당 내역", Override, true},
		{"no match", "안녕하세요", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchKeyword(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTrigger(t *testing.T) {
	got, ok := MatchTrigger("수수료만 보여줘")
	require.True(t, ok)
	assert.Equal(t, Compensation, got)

	// A plain keyword is not a trigger.
	_, ok = MatchTrigger("수수료 알려줘")
	assert.False(t, ok)
}
