package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/llm"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/conversation"
	"hof-chatbot-be/pkg/rag/intent"
	"hof-chatbot-be/pkg/rag/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedResolver struct {
	intent *intent.Intent
	err    error
	calls  int
}

func (r *scriptedResolver) Resolve(ctx context.Context, query string, history []llm.Message) (*intent.Intent, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.intent, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
}

func newTestRouter(resolver *scriptedResolver) (*Router, *conversation.Manager, *conversation.MemoryStore) {
	store := conversation.NewMemoryStore()
	manager := conversation.NewManager(store, logger.NewNopLogger(), fixedNow)
	builder := clarify.NewBuilder(func(n int) int { return 0 })
	return NewRouter(resolver, builder, manager, logger.NewNopLogger()), manager, store
}

func TestGreetingAnsweredInstantlyWithoutResolver(t *testing.T) {
	resolver := &scriptedResolver{}
	r, _, store := newTestRouter(resolver)

	decision, err := r.Route(context.Background(), "s1", "emp-100", "안녕하세요")

	require.NoError(t, err)
	assert.Equal(t, RouteInstant, decision.Route)
	assert.Equal(t, 1.0, decision.Confidence)
	assert.Equal(t, response.Greeting, decision.Reply)
	assert.Equal(t, 0, resolver.calls, "stage-0 answers must not reach the intent model")

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, state.History, 2)
	assert.Equal(t, "assistant", state.History[1].Role)
}

func TestConfidentIntentRoutesToRAG(t *testing.T) {
	resolver := &scriptedResolver{intent: &intent.Intent{
		Type: intent.TypeDataQuery, Confidence: 0.9,
		Query: "7월 수수료", TemplateType: "compensation", Period: "2026-07",
	}}
	r, _, _ := newTestRouter(resolver)

	decision, err := r.Route(context.Background(), "s1", "emp-100", "7월 수수료 얼마 받았어?")

	require.NoError(t, err)
	assert.Equal(t, RouteRAG, decision.Route)
	require.NotNil(t, decision.Intent)
	assert.Equal(t, "compensation", decision.Intent.TemplateType)
}

func TestConfidenceGateBoundaryGoesToRAG(t *testing.T) {
	resolver := &scriptedResolver{intent: &intent.Intent{
		Type: intent.TypeDataQuery, Confidence: 0.6, Query: "수수료",
	}}
	r, _, _ := newTestRouter(resolver)

	decision, err := r.Route(context.Background(), "s1", "emp-100", "수수료 알려줘")

	require.NoError(t, err)
	assert.Equal(t, RouteRAG, decision.Route)
}

func TestLowConfidenceStoresClarification(t *testing.T) {
	resolver := &scriptedResolver{intent: &intent.Intent{
		Type: intent.TypeDataQuery, Confidence: 0.3, Query: "얼마 받았어?",
	}}
	r, _, store := newTestRouter(resolver)

	decision, err := r.Route(context.Background(), "s1", "emp-100", "이번에 얼마 받았어?")

	require.NoError(t, err)
	assert.Equal(t, RouteClarify, decision.Route)
	require.NotNil(t, decision.Clarification)
	assert.Equal(t, clarify.TypeTemplate, decision.Clarification.Type)
	assert.Len(t, decision.Clarification.Options, 3)

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, state.PendingClarification)
	assert.Equal(t, clarify.TypeTemplate, state.PendingClarification.Type)
	require.NotNil(t, state.PendingClarification.PartialIntent)
	assert.InDelta(t, 0.3, state.PendingClarification.PartialIntent.Confidence, 1e-9)
}

func TestClarificationReplySkipsResolver(t *testing.T) {
	resolver := &scriptedResolver{intent: &intent.Intent{
		Type: intent.TypeDataQuery, Confidence: 0.3, Query: "이번 달에 얼마 받았어?", Period: "2026-08",
	}}
	r, _, _ := newTestRouter(resolver)
	ctx := context.Background()

	first, err := r.Route(ctx, "s1", "emp-100", "이번 달에 얼마 받았어?")
	require.NoError(t, err)
	require.Equal(t, RouteClarify, first.Route)
	resolverCallsAfterClarify := resolver.calls

	second, err := r.Route(ctx, "s1", "emp-100", "수수료")
	require.NoError(t, err)

	assert.Equal(t, RouteRAG, second.Route)
	assert.True(t, second.ClarificationResolved)
	require.NotNil(t, second.Intent)
	assert.Equal(t, "compensation", second.Intent.TemplateType)
	assert.Equal(t, "2026-08", second.Intent.Period)
	assert.Equal(t, conversation.ResolvedConfidence, second.Intent.Confidence)
	assert.Equal(t, resolverCallsAfterClarify, resolver.calls, "resolved clarification must not re-run intent resolution")
}

func TestResolverFailureFallsBackWithApology(t *testing.T) {
	resolver := &scriptedResolver{err: errors.New("model unavailable")}
	r, _, store := newTestRouter(resolver)

	decision, err := r.Route(context.Background(), "s1", "emp-100", "7월 수수료 얼마 받았어?")

	require.NoError(t, err)
	assert.Equal(t, RouteFallback, decision.Route)
	assert.Equal(t, response.FallbackApology, decision.Reply)

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, response.FallbackApology, state.History[len(state.History)-1].Content)
}

func TestConfirmedContextAppliedToFreshIntent(t *testing.T) {
	resolver := &scriptedResolver{intent: &intent.Intent{
		Type: intent.TypeDataQuery, Confidence: 0.8, Query: "지급액은?",
	}}
	r, manager, store := newTestRouter(resolver)
	ctx := context.Background()

	state, err := manager.GetOrCreate(ctx, "s1", "emp-100")
	require.NoError(t, err)
	state.ConfirmedContext.TemplateType = "policy"
	state.ConfirmedContext.Period = "2026-07"
	require.NoError(t, store.Put(ctx, state))

	decision, err := r.Route(ctx, "s1", "emp-100", "그럼 지급액은 얼마야?")

	require.NoError(t, err)
	assert.Equal(t, RouteRAG, decision.Route)
	assert.True(t, decision.ContextApplied)
	assert.Equal(t, "policy", decision.Intent.TemplateType)
	assert.Equal(t, "2026-07", decision.Intent.Period)
}
