package chroma_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/vector"
	"github.com/secondbrainhq/secondbrain/pkg/vector/chroma"
)

func TestChroma(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chroma Driver Suite")
}

// fakeChroma is a minimal in-memory stand-in for Chroma's REST API,
// enough for the driver's upsert/query/delete round-trips.
type fakeChroma struct {
	server *httptest.Server

	docs map[string]vector.Document
}

func newFakeChroma() *fakeChroma {
	f := &fakeChroma{docs: make(map[string]vector.Document)}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v2/tenants/default_tenant/databases/default_database/collections/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "content_collection"})
	})

	mux.HandleFunc("POST /api/v2/tenants/default_tenant/databases/default_database/collections/col-1/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs        []string         `json:"ids"`
			Embeddings [][]float32      `json:"embeddings"`
			Documents  []string         `json:"documents"`
			Metadatas  []map[string]any `json:"metadatas"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

		for i, id := range req.IDs {
			doc := vector.Document{ID: id, Embedding: req.Embeddings[i]}
			if i < len(req.Documents) {
				doc.Text = req.Documents[i]
			}
			if i < len(req.Metadatas) {
				m := req.Metadatas[i]
				doc.Meta = vector.Metadata{
					Title:       m["title"].(string),
					Description: m["description"].(string),
					Type:        m["type"].(string),
					Link:        m["link"].(string),
					UserID:      m["userId"].(string),
				}
			}
			f.docs[id] = doc
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	mux.HandleFunc("POST /api/v2/tenants/default_tenant/databases/default_database/collections/col-1/query", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QueryEmbeddings [][]float32    `json:"query_embeddings"`
			NResults        int            `json:"n_results"`
			Where           map[string]any `json:"where"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

		userID, _ := req.Where["userId"].(string)
		query := req.QueryEmbeddings[0]

		// Brute-force nearest neighbor by squared distance.
		bestID := ""
		bestDist := float32(0)
		var bestDoc vector.Document
		for id, doc := range f.docs {
			if doc.Meta.UserID != userID {
				continue
			}
			var dist float32
			for i := range query {
				d := query[i] - doc.Embedding[i]
				dist += d * d
			}
			if bestID == "" || dist < bestDist {
				bestID, bestDist, bestDoc = id, dist, doc
			}
		}

		resp := map[string]any{
			"ids":       [][]string{{}},
			"distances": [][]float32{{}},
			"metadatas": [][]map[string]any{{}},
			"documents": [][]string{{}},
		}
		if bestID != "" {
			resp["ids"] = [][]string{{bestID}}
			resp["distances"] = [][]float32{{bestDist}}
			resp["documents"] = [][]string{{bestDoc.Text}}
			resp["metadatas"] = [][]map[string]any{{{
				"title":       bestDoc.Meta.Title,
				"description": bestDoc.Meta.Description,
				"type":        bestDoc.Meta.Type,
				"link":        bestDoc.Meta.Link,
				"userId":      bestDoc.Meta.UserID,
			}}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /api/v2/tenants/default_tenant/databases/default_database/collections/col-1/delete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
		for _, id := range req.IDs {
			delete(f.docs, id)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	f.server = httptest.NewServer(mux)
	return f
}

var _ = Describe("ChromaDriver", func() {
	var (
		fake   *fakeChroma
		driver *chroma.ChromaDriver
		ctx    context.Context
	)

	BeforeEach(func() {
		fake = newFakeChroma()
		var err error
		driver, err = chroma.NewChromaDriver(chroma.Config{URL: fake.server.URL}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
		fake.server.Close()
	})

	It("requires a URL", func() {
		_, err := chroma.NewChromaDriver(chroma.Config{}, zap.NewNop())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
	})

	It("implements vector.Driver", func() {
		var _ vector.Driver = (*chroma.ChromaDriver)(nil)
	})

	It("round-trips a document through upsert and query", func() {
		doc := vector.Document{
			ID:        "c1",
			Embedding: []float32{1, 0},
			Text:      "My Video youtube https://youtu.be/x",
			Meta: vector.Metadata{
				Title:  "My Video",
				Type:   "youtube",
				Link:   "https://youtu.be/x",
				UserID: "alice",
			},
		}
		Expect(driver.Upsert(ctx, doc)).To(Succeed())

		results, err := driver.Query(ctx, []float32{1, 0}, "alice", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].ID).To(Equal("c1"))
		Expect(results[0].Meta.Title).To(Equal("My Video"))
		Expect(results[0].Meta.UserID).To(Equal("alice"))
	})

	It("scopes queries to the filtered user", func() {
		Expect(driver.Upsert(ctx, vector.Document{
			ID:        "c1",
			Embedding: []float32{1, 0},
			Meta:      vector.Metadata{Title: "alice's", UserID: "alice"},
		})).To(Succeed())

		results, err := driver.Query(ctx, []float32{1, 0}, "bob", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("deletes documents", func() {
		Expect(driver.Upsert(ctx, vector.Document{
			ID:        "c1",
			Embedding: []float32{1, 0},
			Meta:      vector.Metadata{UserID: "alice"},
		})).To(Succeed())

		Expect(driver.Delete(ctx, []string{"c1"})).To(Succeed())

		results, err := driver.Query(ctx, []float32{1, 0}, "alice", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("wraps connection failures with ErrConnection", func() {
		fake.server.Close()

		err := driver.Upsert(ctx, vector.Document{ID: "c1", Embedding: []float32{1, 0}})
		Expect(err).To(MatchError(vector.ErrConnection))
		Expect(strings.Contains(err.Error(), "upsert")).To(BeTrue())
	})
})
