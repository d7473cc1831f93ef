package query_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/query"
	"github.com/secondbrainhq/secondbrain/pkg/vector"
)

func TestQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query Service Suite")
}

type fakeEmbedder struct {
	embedding []float32
	err       error

	lastText string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeEmbedder) Close() error { return nil }

type fakeVectorStore struct {
	results []vector.QueryResult
	err     error

	lastEmbedding []float32
	lastUserID    string
	lastTopK      int
}

func (f *fakeVectorStore) Upsert(context.Context, vector.Document) error { return nil }

func (f *fakeVectorStore) Query(_ context.Context, embedding []float32, userID string, topK int) ([]vector.QueryResult, error) {
	f.lastEmbedding = embedding
	f.lastUserID = userID
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeVectorStore) Delete(context.Context, []string) error { return nil }

func (f *fakeVectorStore) Close() error { return nil }

var _ = Describe("Service", func() {
	var (
		embedder *fakeEmbedder
		store    *fakeVectorStore
		service  *query.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		embedder = &fakeEmbedder{embedding: []float32{0.6, 0.8}}
		store = &fakeVectorStore{}
		service = query.NewService(embedder, store, zap.NewNop())
		ctx = context.Background()
	})

	It("maps the top hit to a content summary", func() {
		store.results = []vector.QueryResult{{
			Document: vector.Document{
				ID: "c1",
				Meta: vector.Metadata{
					Title:       "Go Concurrency Patterns",
					Description: "talk",
					Type:        "youtube",
					Link:        "https://youtu.be/f6kdp27TYZs",
					UserID:      "alice",
				},
			},
			Score: 0.91,
		}}

		card, err := service.Query(ctx, "that talk about goroutines", "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(card).NotTo(BeNil())
		Expect(card.ID).To(Equal("c1"))
		Expect(card.Title).To(Equal("Go Concurrency Patterns"))
		Expect(card.Type).To(Equal("youtube"))
		Expect(card.Link).To(Equal("https://youtu.be/f6kdp27TYZs"))
	})

	It("embeds the query text verbatim and asks for a single result", func() {
		_, err := service.Query(ctx, "  raw query text  ", "alice")
		Expect(err).NotTo(HaveOccurred())

		Expect(embedder.lastText).To(Equal("  raw query text  "))
		Expect(store.lastEmbedding).To(Equal([]float32{0.6, 0.8}))
		Expect(store.lastUserID).To(Equal("alice"))
		Expect(store.lastTopK).To(Equal(1))
	})

	It("returns nil when nothing is indexed for the user", func() {
		card, err := service.Query(ctx, "anything", "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(card).To(BeNil())
	})

	It("propagates embedder failures", func() {
		embedder.err = errors.New("model offline")

		_, err := service.Query(ctx, "anything", "alice")
		Expect(err).To(MatchError(ContainSubstring("model offline")))
	})

	It("propagates vector store failures", func() {
		store.err = errors.New("connection refused")

		_, err := service.Query(ctx, "anything", "alice")
		Expect(err).To(MatchError(ContainSubstring("connection refused")))
	})
})
