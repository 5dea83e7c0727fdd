package ambiguity

import (
	"context"
	"testing"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRuleSource struct {
	rules []*entity.AmbiguityRule
	calls int
	err   error
}

func (s *staticRuleSource) FindActive(ctx context.Context) ([]*entity.AmbiguityRule, error) {
	s.calls++
	return s.rules, s.err
}

func matchesWithScores(typeScores map[string][]float64) []vectorstore.Match {
	var out []vectorstore.Match
	i := 0
	for docType, scores := range typeScores {
		for _, score := range scores {
			out = append(out, vectorstore.Match{
				ID:    docType + "-" + string(rune('a'+i)),
				Score: score,
				Metadata: vectorstore.Metadata{
					DocType: docType,
				},
			})
			i++
		}
	}
	return out
}

func commissionPolicyRule() *entity.AmbiguityRule {
	return &entity.AmbiguityRule{
		Name:                  "commission vs policy",
		Keywords:              []string{"받을 돈", "얼마"},
		CompetingTemplates:    []string{"compensation", "policy"},
		ClarificationQuestion: "수수료와 시책 중 어떤 내역을 확인하시겠어요?",
		ScoreThreshold:        0.15,
		Priority:              10,
		IsActive:              true,
	}
}

func TestDetectDistributionThresholdBoundary(t *testing.T) {
	detector := NewDetector(&staticRuleSource{}, logger.NewNopLogger())

	tests := []struct {
		name       string
		secondBest float64
		ambiguous  bool
	}{
		{"ratio at boundary is ambiguous", 0.86, true},
		{"ratio below boundary is decisive", 0.80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := matchesWithScores(map[string][]float64{
				vectorstore.DocTypeCommission: {1.0, 0.7},
				vectorstore.DocTypePolicy:     {tt.secondBest, 0.6},
			})

			a := detector.Detect(context.Background(), "이번 달 내역 알려줘", matches)

			assert.Equal(t, tt.ambiguous, a.NeedsClarification)
			if tt.ambiguous {
				assert.Equal(t, ReasonResultDistribution, a.Reason)
				assert.Equal(t, []string{vectorstore.DocTypeCommission, vectorstore.DocTypePolicy}, a.CompetingTypes)
				assert.NotEmpty(t, a.Question)
				assert.Len(t, a.Options, 2)
			} else {
				assert.Equal(t, ReasonNone, a.Reason)
			}
		})
	}
}

func TestDetectKeywordConfirmedByDistribution(t *testing.T) {
	source := &staticRuleSource{rules: []*entity.AmbiguityRule{commissionPolicyRule()}}
	detector := NewDetector(source, logger.NewNopLogger())

	matches := matchesWithScores(map[string][]float64{
		vectorstore.DocTypeCommission: {0.91, 0.85},
		vectorstore.DocTypePolicy:     {0.90, 0.82},
	})

	a := detector.Detect(context.Background(), "이번 달에 받을 돈이 얼마야?", matches)

	require.True(t, a.NeedsClarification)
	assert.Equal(t, ReasonBoth, a.Reason)
	require.NotNil(t, a.Rule)
	assert.Equal(t, "수수료와 시책 중 어떤 내역을 확인하시겠어요?", a.Question)
	require.Len(t, a.Options, 2)
	assert.Equal(t, "compensation", a.Options[0].Value)
	assert.Equal(t, "수수료", a.Options[0].Label)
}

func TestDetectKeywordWithoutResultsAsks(t *testing.T) {
	source := &staticRuleSource{rules: []*entity.AmbiguityRule{commissionPolicyRule()}}
	detector := NewDetector(source, logger.NewNopLogger())

	a := detector.Detect(context.Background(), "받을 돈 알려줘", nil)

	require.True(t, a.NeedsClarification)
	assert.Equal(t, ReasonKeywordMatch, a.Reason)
	assert.Len(t, a.Options, 2)
}

func TestDetectKeywordOverriddenByDecisiveResults(t *testing.T) {
	source := &staticRuleSource{rules: []*entity.AmbiguityRule{commissionPolicyRule()}}
	detector := NewDetector(source, logger.NewNopLogger())

	matches := matchesWithScores(map[string][]float64{
		vectorstore.DocTypeCommission: {1.0, 0.9},
		vectorstore.DocTypePolicy:     {0.5, 0.4},
	})

	a := detector.Detect(context.Background(), "받을 돈 알려줘", matches)

	assert.False(t, a.NeedsClarification)
	assert.Equal(t, ReasonNone, a.Reason)
}

func TestDetectTriggerPhraseBypassesEverything(t *testing.T) {
	source := &staticRuleSource{rules: []*entity.AmbiguityRule{commissionPolicyRule()}}
	detector := NewDetector(source, logger.NewNopLogger())

	matches := matchesWithScores(map[string][]float64{
		vectorstore.DocTypeCommission: {0.91, 0.85},
		vectorstore.DocTypePolicy:     {0.90, 0.82},
	})

	a := detector.Detect(context.Background(), "수수료만 얼마 받는지 알려줘", matches)

	assert.False(t, a.NeedsClarification)
	assert.Equal(t, ReasonNone, a.Reason)
}

func TestDetectSmallClustersNeverAmbiguous(t *testing.T) {
	detector := NewDetector(&staticRuleSource{}, logger.NewNopLogger())

	// second cluster has a single hit, below MinResultsPerType
	matches := matchesWithScores(map[string][]float64{
		vectorstore.DocTypeCommission: {1.0, 0.9},
		vectorstore.DocTypePolicy:     {0.99},
	})

	a := detector.Detect(context.Background(), "내역 알려줘", matches)

	assert.False(t, a.NeedsClarification)
}

func TestRuleCacheAvoidsRepeatedLoads(t *testing.T) {
	source := &staticRuleSource{rules: []*entity.AmbiguityRule{commissionPolicyRule()}}
	detector := NewDetector(source, logger.NewNopLogger())

	detector.Detect(context.Background(), "받을 돈", nil)
	detector.Detect(context.Background(), "받을 돈", nil)
	assert.Equal(t, 1, source.calls)

	detector.InvalidateRules()
	detector.Detect(context.Background(), "받을 돈", nil)
	assert.Equal(t, 2, source.calls)
}

func TestDetectProceedsWhenRuleLoadFails(t *testing.T) {
	source := &staticRuleSource{err: assert.AnError}
	detector := NewDetector(source, logger.NewNopLogger())

	a := detector.Detect(context.Background(), "받을 돈 알려줘", nil)

	assert.False(t, a.NeedsClarification)
	assert.Equal(t, ReasonNone, a.Reason)
}

func TestParseReply(t *testing.T) {
	options := []entity.ClarificationOption{
		{Value: "compensation", Label: "수수료"},
		{Value: "policy", Label: "시책"},
		{Value: "override", Label: "오버라이드"},
	}

	tests := []struct {
		name  string
		reply string
		want  string
		ok    bool
	}{
		{"digit index", "2", "policy", true},
		{"digit out of range", "7", "", false},
		{"emoji digit", "1️⃣ 부탁해요", "compensation", true},
		{"label substring", "시책 내역이요", "policy", true},
		{"value substring", "override로 할게요", "override", true},
		{"trigger phrase", "수수료만 볼게요", "compensation", true},
		{"no match", "글쎄요", "", false},
		{"empty reply", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseReply(tt.reply, options)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
