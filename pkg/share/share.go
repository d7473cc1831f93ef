// Package share manages public share links: opaque hashes that expose a
// user's whole collection read-only, at most one per user.
package share

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
)

const hashLength = 10

const hashAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Brain is a resolved share link: the owner's username and their full
// content list.
type Brain struct {
	Username string          `json:"username"`
	Contents []brain.Content `json:"contents"`
}

// Service creates, revokes, and resolves share links.
type Service struct {
	store  storage.Driver
	logger *zap.Logger
}

// NewService creates a share service backed by the given content store.
func NewService(store storage.Driver, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Enable turns sharing on for a user and returns the link hash. Calling
// it again while a link exists returns the same hash.
func (s *Service) Enable(ctx context.Context, userID string) (string, error) {
	hash, err := newHash()
	if err != nil {
		return "", fmt.Errorf("generating share hash: %w", err)
	}

	link, err := s.store.PutShareLink(ctx, brain.ShareLink{
		Hash:   hash,
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("storing share link: %w", err)
	}

	s.logger.Info("sharing enabled",
		zap.String("user_id", userID),
	)

	return link.Hash, nil
}

// Disable removes a user's share link. Disabling when no link exists is
// a no-op.
func (s *Service) Disable(ctx context.Context, userID string) error {
	if err := s.store.DeleteShareLink(ctx, userID); err != nil {
		return fmt.Errorf("deleting share link: %w", err)
	}

	s.logger.Info("sharing disabled",
		zap.String("user_id", userID),
	)

	return nil
}

// Resolve maps a public hash to the owner's username and content list.
// An unknown hash yields storage.NotFoundError.
func (s *Service) Resolve(ctx context.Context, hash string) (Brain, error) {
	link, err := s.store.GetShareLinkByHash(ctx, hash)
	if err != nil {
		return Brain{}, err
	}

	user, err := s.store.GetUser(ctx, link.UserID)
	if err != nil {
		return Brain{}, fmt.Errorf("resolving share link owner: %w", err)
	}

	contents, err := s.store.ListContent(ctx, link.UserID)
	if err != nil {
		return Brain{}, fmt.Errorf("listing shared content: %w", err)
	}

	return Brain{
		Username: user.Username,
		Contents: contents,
	}, nil
}

// newHash returns a random alphanumeric string long enough to make
// links unguessable in practice. Bytes outside the largest multiple of
// the alphabet size are rejected so every character is equally likely.
func newHash() (string, error) {
	limit := byte(256 - 256%len(hashAlphabet))
	out := make([]byte, 0, hashLength)
	buf := make([]byte, hashLength)
	for len(out) < hashLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit || len(out) == hashLength {
				continue
			}
			out = append(out, hashAlphabet[int(b)%len(hashAlphabet)])
		}
	}
	return string(out), nil
}
