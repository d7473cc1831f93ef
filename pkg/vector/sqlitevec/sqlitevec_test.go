package sqlitevec_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/vector"
	"github.com/secondbrainhq/secondbrain/pkg/vector/sqlitevec"
)

func TestSQLiteVec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLiteVec Suite")
}

var _ = Describe("SQLiteVecDriver", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath: ":memory:",
			}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*sqlitevec.SQLiteVecDriver)(nil)
		})
	})

	Describe("Upsert and Query", func() {
		var (
			driver *sqlitevec.SQLiteVecDriver
			ctx    context.Context
		)

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			ctx = context.Background()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		doc := func(id, userID string, emb []float32, title string) vector.Document {
			return vector.Document{
				ID:        id,
				Embedding: emb,
				Text:      title,
				Meta: vector.Metadata{
					Title:  title,
					Type:   "link",
					UserID: userID,
				},
			}
		}

		It("returns the nearest neighbor for the owning user", func() {
			Expect(driver.Upsert(ctx, doc("c1", "alice", []float32{1, 0, 0, 0}, "rust"))).To(Succeed())
			Expect(driver.Upsert(ctx, doc("c2", "alice", []float32{0, 1, 0, 0}, "go"))).To(Succeed())

			results, err := driver.Query(ctx, []float32{0.9, 0.1, 0, 0}, "alice", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("c1"))
			Expect(results[0].Meta.Title).To(Equal("rust"))
			Expect(results[0].Score).To(BeNumerically(">", 0))
		})

		It("finds a user's document behind many closer vectors owned by others", func() {
			// Bob's vectors are all nearer the query than Alice's single
			// document; a global candidate set would have buried it.
			for i := 0; i < 40; i++ {
				id := fmt.Sprintf("bob-%d", i)
				Expect(driver.Upsert(ctx, doc(id, "bob", []float32{1, 0, 0, 0}, "bob's"))).To(Succeed())
			}
			Expect(driver.Upsert(ctx, doc("c1", "alice", []float32{0, 1, 0, 0}, "alice's"))).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, "alice", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("c1"))
		})

		It("never returns another user's documents", func() {
			Expect(driver.Upsert(ctx, doc("c1", "alice", []float32{1, 0, 0, 0}, "rust"))).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, "bob", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("returns empty results for an empty collection", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, "alice", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("replaces an existing document on re-upsert", func() {
			Expect(driver.Upsert(ctx, doc("c1", "alice", []float32{1, 0, 0, 0}, "old title"))).To(Succeed())
			Expect(driver.Upsert(ctx, doc("c1", "alice", []float32{0, 0, 0, 1}, "new title"))).To(Succeed())

			results, err := driver.Query(ctx, []float32{0, 0, 0, 1}, "alice", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("c1"))
			Expect(results[0].Meta.Title).To(Equal("new title"))
		})
	})

	Describe("Delete", func() {
		var (
			driver *sqlitevec.SQLiteVecDriver
			ctx    context.Context
		)

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			ctx = context.Background()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("removes documents so they stop matching", func() {
			Expect(driver.Upsert(ctx, vector.Document{
				ID:        "c1",
				Embedding: []float32{1, 0, 0, 0},
				Meta:      vector.Metadata{UserID: "alice"},
			})).To(Succeed())

			Expect(driver.Delete(ctx, []string{"c1"})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, "alice", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("ignores unknown ids", func() {
			Expect(driver.Delete(ctx, []string{"no-such-doc"})).To(Succeed())
		})

		It("is a no-op for an empty id list", func() {
			Expect(driver.Delete(ctx, nil)).To(Succeed())
		})
	})
})
