package fusion

import (
	"sort"

	"hof-chatbot-be/pkg/vectorstore"
)

const (
	// DefaultRRFK is the standard reciprocal-rank-fusion smoothing constant.
	DefaultRRFK = 60

	// DefaultLambda weights relevance vs. diversity in MMR selection.
	DefaultLambda = 0.7
)

// ReciprocalRankFusion merges multiple per-namespace ranked lists into one.
// Each document scores sum(1/(k+rank+1)) over the lists containing it, rank
// being the 0-based position within that list's own order. Documents absent
// from a list contribute nothing. Ties after summation are broken by the
// document's highest original per-list score, descending, then by ID for a
// stable, reproducible order.
func ReciprocalRankFusion(lists [][]vectorstore.Match, k int) []vectorstore.Match {
	if k <= 0 {
		k = DefaultRRFK
	}

	type fusedDoc struct {
		match     vectorstore.Match
		fused     float64
		bestScore float64
	}

	docs := make(map[string]*fusedDoc)
	var order []string

	for _, list := range lists {
		for rank, m := range list {
			contribution := 1.0 / float64(k+rank+1)
			d, ok := docs[m.ID]
			if !ok {
				d = &fusedDoc{match: m, bestScore: m.Score}
				docs[m.ID] = d
				order = append(order, m.ID)
			}
			d.fused += contribution
			if m.Score > d.bestScore {
				d.bestScore = m.Score
			}
		}
	}

	fused := make([]vectorstore.Match, 0, len(order))
	for _, id := range order {
		d := docs[id]
		m := d.match
		m.Score = d.fused
		m.Source = vectorstore.SourceFused
		fused = append(fused, m)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		bi, bj := docs[fused[i].ID].bestScore, docs[fused[j].ID].bestScore
		if bi != bj {
			return bi > bj
		}
		return fused[i].ID < fused[j].ID
	})

	return fused
}

// MaximalMarginalRelevance reorders fused matches to trade relevance against
// diversity. The selection is seeded with the highest-scored candidate, then
// iteratively adds the candidate maximizing
//
//	lambda*relevance + (1-lambda)*(1 - max similarity to selected)
//
// Similarity is a metadata heuristic, not a vector distance: per-result
// embeddings are not retained after retrieval, and re-fetching them is a cost
// the pipeline deliberately avoids. Returns min(len(matches), topK) items
// with no duplicates.
func MaximalMarginalRelevance(matches []vectorstore.Match, lambda float64, topK int) []vectorstore.Match {
	if len(matches) == 0 || topK <= 0 {
		return nil
	}
	if lambda <= 0 || lambda > 1 {
		lambda = DefaultLambda
	}
	if topK > len(matches) {
		topK = len(matches)
	}

	remaining := make([]vectorstore.Match, len(matches))
	copy(remaining, matches)

	// Seed with the single highest-scored candidate.
	seedIdx := 0
	for i, m := range remaining {
		if m.Score > remaining[seedIdx].Score {
			seedIdx = i
		}
	}

	selected := make([]vectorstore.Match, 0, topK)
	selected = append(selected, remaining[seedIdx])
	remaining = append(remaining[:seedIdx], remaining[seedIdx+1:]...)

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := 0
		bestValue := -1.0
		for i, cand := range remaining {
			maxSim := 0.0
			for _, sel := range selected {
				if sim := metadataSimilarity(cand.Metadata, sel.Metadata); sim > maxSim {
					maxSim = sim
				}
			}
			value := lambda*cand.Score + (1-lambda)*(1-maxSim)
			if value > bestValue {
				bestValue = value
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// metadataSimilarity estimates how redundant two matches are. Same source
// document carries the largest weight; same record type and same
// period/owner carry smaller ones. The result is the average over the
// factors that actually contributed.
func metadataSimilarity(a, b vectorstore.Metadata) float64 {
	var contributions []float64

	if a.SourceDoc != "" && a.SourceDoc == b.SourceDoc {
		contributions = append(contributions, 0.9)
	}
	if a.DocType != "" && a.DocType == b.DocType {
		contributions = append(contributions, 0.5)
	}
	if a.Period != "" && a.Period == b.Period {
		contributions = append(contributions, 0.3)
	}
	if a.EmployeeID != "" && a.EmployeeID == b.EmployeeID {
		contributions = append(contributions, 0.3)
	}

	if len(contributions) == 0 {
		return 0
	}
	var sum float64
	for _, c := range contributions {
		sum += c
	}
	return sum / float64(len(contributions))
}
