package memory

import (
	"context"
	"sort"
	"sync"

	"hof-chatbot-be/pkg/vectorstore"
)

// Record is one stored vector plus its match payload.
type Record struct {
	ID       string
	Vector   []float32
	Document string
	Metadata vectorstore.Metadata
}

// Index is a brute-force in-memory vectorstore.Index, partitioned by
// namespace. Used by tests and local development.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string][]Record

	// QueryErr, when set for a namespace, makes queries against it fail.
	queryErr map[string]error
}

func NewIndex() *Index {
	return &Index{
		namespaces: make(map[string][]Record),
		queryErr:   make(map[string]error),
	}
}

func (ix *Index) Upsert(namespace string, records ...Record) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.namespaces[namespace] = append(ix.namespaces[namespace], records...)
}

// FailNamespace makes every query against the namespace return err.
func (ix *Index) FailNamespace(namespace string, err error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.queryErr[namespace] = err
}

func (ix *Index) Query(ctx context.Context, namespace string, vector []float32, topK int, filter *vectorstore.Filter) ([]vectorstore.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := ix.queryErr[namespace]; err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}

	var matches []vectorstore.Match
	for _, rec := range ix.namespaces[namespace] {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		matches = append(matches, vectorstore.Match{
			ID:        rec.ID,
			Score:     cosine(rec.Vector, vector),
			Namespace: namespace,
			Document:  rec.Document,
			Metadata:  rec.Metadata,
			Source:    vectorstore.SourceDense,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func matchesFilter(md vectorstore.Metadata, f *vectorstore.Filter) bool {
	if f == nil {
		return true
	}
	if f.EmployeeID != "" && md.EmployeeID != f.EmployeeID {
		return false
	}
	if f.DocType != "" && md.DocType != f.DocType {
		return false
	}
	if f.Period != "" && md.Period != f.Period {
		return false
	}
	if f.Company != "" && md.Company != f.Company {
		return false
	}
	return true
}

// cosine assumes both vectors are L2-normalized, so the dot product is the
// cosine similarity.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
