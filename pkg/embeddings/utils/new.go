// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/embeddings"
	"github.com/secondbrainhq/secondbrain/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Logger       *zap.Logger
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
