package share_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/share"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
	"github.com/secondbrainhq/secondbrain/pkg/storage/inmemory"
)

func TestShare(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Share Service Suite")
}

var _ = Describe("Service", func() {
	var (
		store   *inmemory.Driver
		service *share.Service
		ctx     context.Context
		alice   brain.User
	)

	BeforeEach(func() {
		store = inmemory.NewDriver()
		service = share.NewService(store, zap.NewNop())
		ctx = context.Background()

		var err error
		alice, err = store.CreateUser(ctx, brain.User{Username: "alice"})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Enable", func() {
		It("returns a ten character alphanumeric hash", func() {
			hash, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(MatchRegexp(`^[a-zA-Z0-9]{10}$`))
		})

		It("is idempotent per user", func() {
			first, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("Disable", func() {
		It("revokes the hash", func() {
			hash, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Disable(ctx, alice.ID)).To(Succeed())

			_, err = service.Resolve(ctx, hash)
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("is a no-op when sharing was never enabled", func() {
			Expect(service.Disable(ctx, alice.ID)).To(Succeed())
		})
	})

	Describe("Resolve", func() {
		It("returns the owner's username and full collection", func() {
			_, err := store.CreateContent(ctx, brain.Content{
				Title:  "Go Proverbs",
				Link:   "https://go-proverbs.github.io",
				Type:   brain.TypeLink,
				UserID: alice.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			hash, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			resolved, err := service.Resolve(ctx, hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Username).To(Equal("alice"))
			Expect(resolved.Contents).To(HaveLen(1))
			Expect(resolved.Contents[0].Title).To(Equal("Go Proverbs"))
		})

		It("does not leak another user's content", func() {
			bob, err := store.CreateUser(ctx, brain.User{Username: "bob"})
			Expect(err).NotTo(HaveOccurred())
			_, err = store.CreateContent(ctx, brain.Content{
				Title:  "bob's bookmark",
				Link:   "https://example.com",
				Type:   brain.TypeLink,
				UserID: bob.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			hash, err := service.Enable(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			resolved, err := service.Resolve(ctx, hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Contents).To(BeEmpty())
		})

		It("yields not found for an unknown hash", func() {
			_, err := service.Resolve(ctx, "doesnotxst")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})
})
