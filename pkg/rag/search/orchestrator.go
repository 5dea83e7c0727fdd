// Package search runs the retrieval pipeline: one embedding, a parallel
// namespace fan-out, rank fusion, optional diversification and an optional
// second-stage rerank.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/embedding"
	"hof-chatbot-be/pkg/rag/access"
	"hof-chatbot-be/pkg/rag/fusion"
	"hof-chatbot-be/pkg/rag/rerank"
	"hof-chatbot-be/pkg/vectorstore"

	"golang.org/x/sync/errgroup"
)

// Config encapsulates search parameters.
type Config struct {
	// BroadTopK is how many candidates each namespace contributes before
	// fusion.
	BroadTopK int
	TopK      int
	RRFK      int
	UseMMR    bool
	MMRLambda float64
	// RerankTopN caps how many fused candidates go to the reranker.
	RerankTopN    int
	RerankTimeout time.Duration
}

// DefaultConfig returns default search configuration.
func DefaultConfig() Config {
	return Config{
		BroadTopK:     50,
		TopK:          10,
		RRFK:          fusion.DefaultRRFK,
		UseMMR:        true,
		MMRLambda:     fusion.DefaultLambda,
		RerankTopN:    10,
		RerankTimeout: 3 * time.Second,
	}
}

// Results is the pipeline output.
type Results struct {
	Matches []vectorstore.Match
	// FailedNamespaces lists namespaces whose query failed; their
	// candidates are simply absent.
	FailedNamespaces []string
	RerankApplied    bool
	RetrievalLatency time.Duration
	RerankingLatency time.Duration
}

// Orchestrator wires the retrieval stages together. The reranker may be nil.
type Orchestrator struct {
	index     vectorstore.Index
	embedder  embedding.Provider
	validator *access.Validator
	reranker  rerank.Reranker
	logger    logger.ILogger
	config    Config
}

func NewOrchestrator(
	index vectorstore.Index,
	embedder embedding.Provider,
	validator *access.Validator,
	reranker rerank.Reranker,
	log logger.ILogger,
	config Config,
) *Orchestrator {
	if config.BroadTopK <= 0 {
		config.BroadTopK = 50
	}
	if config.TopK <= 0 {
		config.TopK = 10
	}
	if config.RerankTimeout <= 0 {
		config.RerankTimeout = 3 * time.Second
	}
	return &Orchestrator{
		index:     index,
		embedder:  embedder,
		validator: validator,
		reranker:  reranker,
		logger:    log,
		config:    config,
	}
}

// Search embeds the query once and fans out across namespaces.
// expectedOwner is the authenticated employee whose private namespaces may
// be touched; every private-namespace match is owner-checked before it can
// reach fusion. A single failing namespace degrades the result set, a
// security violation aborts the whole request.
func (o *Orchestrator) Search(
	ctx context.Context,
	query string,
	namespaces []string,
	expectedOwner string,
	filter *vectorstore.Filter,
) (*Results, error) {
	if len(namespaces) == 0 {
		return nil, fmt.Errorf("no namespaces to search")
	}

	retrievalStart := time.Now()

	vector, err := o.embedder.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	lists := make([][]vectorstore.Match, len(namespaces))
	var mu sync.Mutex
	var failed []string

	g, ctx := errgroup.WithContext(ctx)
	for i, namespace := range namespaces {
		i, namespace := i, namespace
		g.Go(func() error {
			// The owner equality filter is a private-partition guard;
			// shared namespaces hold unowned records.
			nsFilter := filter
			if nsFilter != nil && nsFilter.EmployeeID != "" && !access.IsPrivate(namespace) {
				f := *nsFilter
				f.EmployeeID = ""
				nsFilter = &f
			}

			matches, err := o.index.Query(ctx, namespace, vector, o.config.BroadTopK, nsFilter)
			if err != nil {
				o.logger.Warn(logger.ModuleSearch, "namespace query failed, continuing without it", map[string]interface{}{
					"namespace": namespace,
					"error":     err.Error(),
				})
				mu.Lock()
				failed = append(failed, namespace)
				mu.Unlock()
				return nil
			}

			if err := o.validator.ValidateMatches(ctx, namespace, expectedOwner, matches); err != nil {
				// Cancels the sibling queries via the group context.
				return err
			}

			lists[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(failed) == len(namespaces) {
		return nil, fmt.Errorf("all %d namespace queries failed", len(namespaces))
	}

	fused := fusion.ReciprocalRankFusion(lists, o.config.RRFK)
	if o.config.UseMMR {
		size := o.config.TopK
		if o.config.RerankTopN > size {
			size = o.config.RerankTopN
		}
		fused = fusion.MaximalMarginalRelevance(fused, o.config.MMRLambda, size)
	}

	results := &Results{
		FailedNamespaces: failed,
		RetrievalLatency: time.Since(retrievalStart),
	}

	fused, results.RerankApplied, results.RerankingLatency = o.maybeRerank(ctx, query, fused)

	if len(fused) > o.config.TopK {
		fused = fused[:o.config.TopK]
	}
	results.Matches = fused

	o.logger.Info(logger.ModuleSearch, "search completed", map[string]interface{}{
		"namespaces":     len(namespaces),
		"failed":         len(failed),
		"matches":        len(results.Matches),
		"rerank_applied": results.RerankApplied,
		"retrieval_ms":   results.RetrievalLatency.Milliseconds(),
		"reranking_ms":   results.RerankingLatency.Milliseconds(),
	})

	return results, nil
}

// SearchEmployee searches one employee's private partition plus the shared
// policy namespace, with the redundant owner filter applied.
func (o *Orchestrator) SearchEmployee(ctx context.Context, employeeID, query string) (*Results, error) {
	namespaces := []string{access.NamespaceFor(employeeID), vectorstore.SharedNamespace}
	return o.Search(ctx, query, namespaces, employeeID, access.OwnerFilter(employeeID))
}

// SearchByDocType narrows SearchEmployee to one record type.
func (o *Orchestrator) SearchByDocType(ctx context.Context, employeeID, query, docType string) (*Results, error) {
	filter := access.OwnerFilter(employeeID)
	filter.DocType = docType
	namespaces := []string{access.NamespaceFor(employeeID), vectorstore.SharedNamespace}
	return o.Search(ctx, query, namespaces, employeeID, filter)
}

// maybeRerank sends the head of the fused list to the cross-encoder. Any
// failure, including the timeout, keeps the fused order.
func (o *Orchestrator) maybeRerank(ctx context.Context, query string, fused []vectorstore.Match) ([]vectorstore.Match, bool, time.Duration) {
	if o.reranker == nil || len(fused) == 0 {
		return fused, false, 0
	}

	topN := o.config.RerankTopN
	if topN <= 0 || topN > len(fused) {
		topN = len(fused)
	}

	candidates := make([]rerank.Candidate, topN)
	for i, m := range fused[:topN] {
		candidates[i] = rerank.Candidate{ID: m.ID, Score: m.Score, Text: m.Document}
	}

	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, o.config.RerankTimeout)
	defer cancel()

	scored, err := o.reranker.Rerank(rctx, query, candidates, topN)
	elapsed := time.Since(start)
	if err != nil {
		o.logger.Warn(logger.ModuleSearch, "rerank failed, keeping fused order", map[string]interface{}{
			"error": err.Error(),
		})
		return fused, false, elapsed
	}

	byID := make(map[string]float64, len(scored))
	for _, s := range scored {
		byID[s.ID] = s.RerankScore
	}

	head := make([]vectorstore.Match, topN)
	copy(head, fused[:topN])
	for i := range head {
		if score, ok := byID[head[i].ID]; ok {
			head[i].Score = score
		}
	}
	sort.SliceStable(head, func(i, j int) bool {
		return head[i].Score > head[j].Score
	})

	out := make([]vectorstore.Match, 0, len(fused))
	out = append(out, head...)
	out = append(out, fused[topN:]...)
	return out, true, elapsed
}
