package conversation

import (
	"context"
	"testing"
	"time"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/intent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, ""), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	state := &State{
		SessionID:      "s1",
		EmployeeID:     "emp-100",
		CreatedAt:      now,
		LastActivityAt: now,
		History: []HistoryEntry{
			{Role: "user", Content: "수수료 알려줘", Timestamp: now},
		},
		ConfirmedContext: ConfirmedContext{TemplateType: "compensation", Period: "2026-08"},
		PendingClarification: &PendingClarification{
			Type:      clarify.TypeTemplate,
			Question:  "어떤 항목에 대해 알려드릴까요?",
			Options:   []entity.ClarificationOption{{Value: "policy", Label: "시책"}},
			CreatedAt: now,
			PartialIntent: &intent.Intent{
				Type:       intent.TypeDataQuery,
				Confidence: 0.4,
				Query:      "얼마 받았어?",
			},
		},
	}
	require.NoError(t, store.Put(ctx, state))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "emp-100", got.EmployeeID)
	assert.Equal(t, state.History, got.History)
	assert.Equal(t, state.ConfirmedContext, got.ConfirmedContext)
	require.NotNil(t, got.PendingClarification)
	assert.Equal(t, "시책", got.PendingClarification.Options[0].Label)
	require.NotNil(t, got.PendingClarification.PartialIntent)
	assert.Equal(t, "얼마 받았어?", got.PendingClarification.PartialIntent.Query)
}

func TestRedisStoreUnknownSessionIsNil(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStorePutRefreshesTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	state := &State{SessionID: "s1", EmployeeID: "emp-100"}
	require.NoError(t, store.Put(ctx, state))
	assert.Equal(t, SessionTTL, mr.TTL("chat:session:s1"))

	mr.FastForward(10 * time.Minute)
	require.NoError(t, store.Put(ctx, state))
	assert.Equal(t, SessionTTL, mr.TTL("chat:session:s1"))
}

func TestRedisStoreKeyExpiresWithSession(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &State{SessionID: "s1", EmployeeID: "emp-100"}))

	mr.FastForward(SessionTTL + time.Minute)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &State{SessionID: "s1", EmployeeID: "emp-100"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
