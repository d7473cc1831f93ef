package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/embeddings"
	"github.com/secondbrainhq/secondbrain/pkg/embeddings/ollama"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

// fakeOllama answers /api/embed with a fixed vector.
func fakeOllama(vec []float32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{vec},
		})
	}))
}

var _ = Describe("Embedder", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	It("becomes ready after the warmup request succeeds", func() {
		server := fakeOllama([]float32{1, 0, 0})
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
			Model:   "test-model",
		}, logger)
		Expect(err).NotTo(HaveOccurred())
		defer embedder.Close()

		Eventually(embedder.Ready).Should(BeTrue())

		vec, err := embedder.Embed(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(HaveLen(3))
	})

	It("returns ErrModelNotReady while the model is loading", func() {
		// A server that never answers embed requests keeps the
		// embedder permanently not-ready.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
		}, logger)
		Expect(err).NotTo(HaveOccurred())
		defer embedder.Close()

		_, err = embedder.Embed(context.Background(), "hello")
		Expect(err).To(MatchError(embeddings.ErrModelNotReady))
	})

	It("normalizes returned embeddings to unit length", func() {
		server := fakeOllama([]float32{3, 4})
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
		}, logger)
		Expect(err).NotTo(HaveOccurred())
		defer embedder.Close()

		Eventually(embedder.Ready).Should(BeTrue())

		vec, err := embedder.Embed(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(vec[1]).To(BeNumerically("~", 0.8, 1e-6))
	})
})
