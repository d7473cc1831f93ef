// Package query answers semantic questions against a user's saved
// content: it embeds the question text and asks the vector store for
// the nearest indexed item.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/embeddings"
	"github.com/secondbrainhq/secondbrain/pkg/vector"
)

// Service embeds query text and resolves it to the closest stored
// content item for a user.
type Service struct {
	embedder embeddings.Embedder
	store    vector.Driver
	logger   *zap.Logger
}

// NewService creates a query service backed by the given embedder and
// vector store.
func NewService(embedder embeddings.Embedder, store vector.Driver, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Query embeds text as-is and returns the nearest content item owned
// by userID, or nil when the user has nothing indexed yet.
func (s *Service) Query(ctx context.Context, text, userID string) (*brain.Summary, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query text: %w", err)
	}

	results, err := s.store.Query(ctx, embedding, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	if len(results) == 0 {
		s.logger.Debug("query matched nothing",
			zap.String("user_id", userID),
		)
		return nil, nil
	}

	top := results[0]
	s.logger.Debug("query matched document",
		zap.String("user_id", userID),
		zap.String("doc_id", top.ID),
		zap.Float32("score", top.Score),
	)

	return &brain.Summary{
		ID:          top.ID,
		Title:       top.Meta.Title,
		Description: top.Meta.Description,
		Type:        top.Meta.Type,
		Link:        top.Meta.Link,
	}, nil
}
