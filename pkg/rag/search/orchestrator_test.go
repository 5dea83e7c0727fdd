package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/rag/access"
	"hof-chatbot-be/pkg/rag/rerank"
	"hof-chatbot-be/pkg/vectorstore"
	"hof-chatbot-be/pkg/vectorstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedder struct {
	vector []float32
}

func (e *fixedEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func (e *fixedEmbedder) Dimension() int { return len(e.vector) }

type recordingPublisher struct {
	incidents []*access.SecurityViolationError
}

func (p *recordingPublisher) PublishSecurityIncident(ctx context.Context, violation *access.SecurityViolationError) {
	p.incidents = append(p.incidents, violation)
}

type scriptedReranker struct {
	results []rerank.Result
	err     error
}

func (r *scriptedReranker) Rerank(ctx context.Context, query string, candidates []rerank.Candidate, topN int) ([]rerank.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

func seedIndex(t *testing.T) *memory.Index {
	t.Helper()
	index := memory.NewIndex()
	index.Upsert("emp_100",
		memory.Record{
			ID:     "comm-07",
			Vector: []float32{1, 0, 0},
			Metadata: vectorstore.Metadata{
				EmployeeID: "100", DocType: vectorstore.DocTypeCommission, Period: "2026-07",
			},
		},
		memory.Record{
			ID:     "comm-06",
			Vector: []float32{0.8, 0.6, 0},
			Metadata: vectorstore.Metadata{
				EmployeeID: "100", DocType: vectorstore.DocTypeCommission, Period: "2026-06",
			},
		},
	)
	index.Upsert(vectorstore.SharedNamespace,
		memory.Record{
			ID:     "policy-q3",
			Vector: []float32{0.6, 0.8, 0},
			Metadata: vectorstore.Metadata{
				DocType: vectorstore.DocTypePolicy, Period: "2026-07",
			},
		},
	)
	return index
}

func newTestOrchestrator(index *memory.Index, reranker rerank.Reranker) (*Orchestrator, *recordingPublisher) {
	publisher := &recordingPublisher{}
	validator := access.NewValidator(logger.NewNopLogger(), publisher)
	config := DefaultConfig()
	config.UseMMR = false
	return NewOrchestrator(index, &fixedEmbedder{vector: []float32{1, 0, 0}}, validator, reranker, logger.NewNopLogger(), config), publisher
}

func TestSearchEmployeeFusesPrivateAndSharedNamespaces(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(seedIndex(t), nil)

	results, err := orchestrator.SearchEmployee(context.Background(), "100", "7월 수수료")

	require.NoError(t, err)
	require.Len(t, results.Matches, 3)
	assert.Empty(t, results.FailedNamespaces)
	assert.Equal(t, "comm-07", results.Matches[0].ID)
	assert.Equal(t, vectorstore.SourceFused, results.Matches[0].Source)

	ids := make(map[string]bool)
	for _, m := range results.Matches {
		ids[m.ID] = true
	}
	assert.True(t, ids["policy-q3"], "shared namespace results must survive the owner filter")
	assert.Greater(t, results.RetrievalLatency, time.Duration(0))
}

func TestSearchByDocTypeRestrictsResults(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(seedIndex(t), nil)

	results, err := orchestrator.SearchByDocType(context.Background(), "100", "수수료", vectorstore.DocTypeCommission)

	require.NoError(t, err)
	require.Len(t, results.Matches, 2)
	for _, m := range results.Matches {
		assert.Equal(t, vectorstore.DocTypeCommission, m.Metadata.DocType)
	}
}

func TestSearchToleratesPartialNamespaceFailure(t *testing.T) {
	index := seedIndex(t)
	index.FailNamespace(vectorstore.SharedNamespace, errors.New("connection reset"))
	orchestrator, _ := newTestOrchestrator(index, nil)

	results, err := orchestrator.SearchEmployee(context.Background(), "100", "수수료")

	require.NoError(t, err)
	assert.Equal(t, []string{vectorstore.SharedNamespace}, results.FailedNamespaces)
	require.Len(t, results.Matches, 2)
}

func TestSearchFailsWhenEveryNamespaceFails(t *testing.T) {
	index := seedIndex(t)
	index.FailNamespace("emp_100", errors.New("down"))
	index.FailNamespace(vectorstore.SharedNamespace, errors.New("down"))
	orchestrator, _ := newTestOrchestrator(index, nil)

	_, err := orchestrator.SearchEmployee(context.Background(), "100", "수수료")

	require.Error(t, err)
	assert.False(t, access.IsSecurityViolation(err))
}

func TestForeignRecordInPrivateNamespaceIsFatal(t *testing.T) {
	index := seedIndex(t)
	// Simulates an ingestion bug: someone else's record landed in emp_100.
	// Without the redundant owner filter only the post-hoc check stands
	// between it and the caller.
	index.Upsert("emp_100", memory.Record{
		ID:     "foreign",
		Vector: []float32{0.9, 0.1, 0},
		Metadata: vectorstore.Metadata{
			EmployeeID: "999", DocType: vectorstore.DocTypeCommission,
		},
	})
	orchestrator, publisher := newTestOrchestrator(index, nil)

	results, err := orchestrator.Search(context.Background(), "수수료", []string{"emp_100"}, "100", nil)

	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, access.IsSecurityViolation(err))

	var violation *access.SecurityViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "emp_100", violation.Namespace)
	assert.Equal(t, "100", violation.ExpectedOwner)
	assert.Equal(t, "999", violation.ActualOwner)
	assert.Equal(t, "foreign", violation.MatchID)

	require.Len(t, publisher.incidents, 1)
}

func TestOwnerFilterBlocksForeignRecordBeforeValidation(t *testing.T) {
	index := seedIndex(t)
	index.Upsert("emp_100", memory.Record{
		ID:     "foreign",
		Vector: []float32{0.9, 0.1, 0},
		Metadata: vectorstore.Metadata{
			EmployeeID: "999", DocType: vectorstore.DocTypeCommission,
		},
	})
	orchestrator, publisher := newTestOrchestrator(index, nil)

	results, err := orchestrator.SearchEmployee(context.Background(), "100", "수수료")

	require.NoError(t, err)
	for _, m := range results.Matches {
		assert.NotEqual(t, "foreign", m.ID)
	}
	assert.Empty(t, publisher.incidents)
}

func TestRerankReordersHeadAndReportsLatency(t *testing.T) {
	reranker := &scriptedReranker{results: []rerank.Result{
		{ID: "comm-06", RerankScore: 0.99},
		{ID: "comm-07", RerankScore: 0.42},
		{ID: "policy-q3", RerankScore: 0.10},
	}}
	orchestrator, _ := newTestOrchestrator(seedIndex(t), reranker)

	results, err := orchestrator.SearchEmployee(context.Background(), "100", "6월 수수료")

	require.NoError(t, err)
	assert.True(t, results.RerankApplied)
	require.Len(t, results.Matches, 3)
	assert.Equal(t, "comm-06", results.Matches[0].ID)
	assert.InDelta(t, 0.99, results.Matches[0].Score, 1e-9)
}

func TestRerankFailureKeepsFusedOrder(t *testing.T) {
	reranker := &scriptedReranker{err: errors.New("cross encoder timeout")}
	orchestrator, _ := newTestOrchestrator(seedIndex(t), reranker)

	results, err := orchestrator.SearchEmployee(context.Background(), "100", "수수료")

	require.NoError(t, err)
	assert.False(t, results.RerankApplied)
	assert.Equal(t, "comm-07", results.Matches[0].ID)
}
