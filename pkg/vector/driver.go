// Package vector provides interfaces and implementations for storing
// and querying content embeddings. The vector index is derived from the
// content store and is maintained best-effort: records may be stale or
// absent relative to the authoritative content rows.
package vector

import "context"

// Metadata carries the content fields stored alongside an embedding so
// query hits can be mapped back to a content summary without touching
// the content store.
type Metadata struct {
	Title       string
	Description string
	Type        string
	Link        string
	UserID      string
}

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is the content id this record is derived from.
	ID string

	// Embedding is the vector representation of the document text.
	Embedding []float32

	// Text is the combined text the embedding was computed from.
	Text string

	// Meta is the content metadata used for filtering and result mapping.
	Meta Metadata
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of content embeddings.
type Driver interface {
	// Upsert stores a document, replacing any existing record with the
	// same ID.
	Upsert(ctx context.Context, doc Document) error

	// Query finds the topK most similar documents to the given
	// embedding among records owned by userID. An empty result is not
	// an error.
	Query(ctx context.Context, embedding []float32, userID string, topK int) ([]QueryResult, error)

	// Delete removes documents by their IDs. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
