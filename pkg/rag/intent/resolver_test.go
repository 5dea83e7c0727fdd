package intent

import (
	"context"
	"errors"
	"testing"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	response string
	err      error
	calls    int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.calls++
	return p.response, p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.calls++
	return p.response, p.err
}

func TestResolveParsesStructuredIntent(t *testing.T) {
	provider := &scriptedProvider{
		response: "Here is the classification:\n" +
			`{"type": "data_query", "confidence": 0.92, "query": "7월 수수료 내역", "template_type": "compensation", "period": "2026-07", "company": "", "calculation_type": "total", "fields": ["지급액"]}`,
	}
	resolver := NewResolver(provider, logger.NewNopLogger())

	intent, err := resolver.Resolve(context.Background(), "7월에 수수료 총 얼마 받았어?", nil)

	require.NoError(t, err)
	assert.Equal(t, TypeDataQuery, intent.Type)
	assert.InDelta(t, 0.92, intent.Confidence, 1e-9)
	assert.Equal(t, "compensation", intent.TemplateType)
	assert.Equal(t, "2026-07", intent.Period)
	assert.Equal(t, "total", intent.CalculationType)
	assert.Equal(t, []string{"지급액"}, intent.Fields)
}

func TestResolveTransportErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	resolver := NewResolver(provider, logger.NewNopLogger())

	intent, err := resolver.Resolve(context.Background(), "수수료 알려줘", nil)

	require.Error(t, err)
	assert.Nil(t, intent)
}

func TestResolveMalformedResponseDegrades(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json at all", "죄송합니다, 잘 모르겠어요."},
		{"json without query", `{"type": "data_query", "confidence": 0.9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{response: tt.response}
			resolver := NewResolver(provider, logger.NewNopLogger())

			intent, err := resolver.Resolve(context.Background(), "수수료 알려줘", nil)

			require.NoError(t, err)
			require.NotNil(t, intent)
			assert.Equal(t, TypeDataQuery, intent.Type)
			assert.InDelta(t, 0.3, intent.Confidence, 1e-9)
			assert.Equal(t, "수수료 알려줘", intent.Query)
		})
	}
}

func TestResolveClampsConfidenceAndNormalizesType(t *testing.T) {
	provider := &scriptedProvider{
		response: `{"type": "DATA_QUERY", "confidence": 1.4, "query": "시책 조건"}`,
	}
	resolver := NewResolver(provider, logger.NewNopLogger())

	intent, err := resolver.Resolve(context.Background(), "시책 조건이 뭐야?", nil)

	require.NoError(t, err)
	assert.Equal(t, TypeDataQuery, intent.Type)
	assert.Equal(t, 1.0, intent.Confidence)
}
