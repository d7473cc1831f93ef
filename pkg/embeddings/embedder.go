// Package embeddings
package embeddings

import (
	"context"
	"errors"
	"math"
)

// ErrModelNotReady is returned when an embedding is requested before the
// underlying model has finished loading. Callers should treat it as a
// retryable, service-unavailable condition rather than a client error.
var ErrModelNotReady = errors.New("embedding model not yet loaded")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Normalize scales v to unit L2 length in place and returns it. With
// normalized vectors, cosine and dot-product similarity are equivalent
// downstream. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
