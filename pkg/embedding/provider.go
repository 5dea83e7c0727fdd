package embedding

import "context"

// Provider generates a dense vector for a piece of query or document text.
// Implementations return L2-normalized vectors of a fixed dimensionality.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
