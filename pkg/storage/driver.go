// Package storage defines the content store contract: persistence for
// users, content items, and share links. The content store is the
// system of record; the vector index is a derived, best-effort cache.
package storage

import (
	"context"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
)

// Driver defines the interface for persisting and retrieving users,
// content, and share links in a storage backend.
type Driver interface {
	// CreateUser persists a new user. Returns ErrUsernameTaken if the
	// username is already in use.
	CreateUser(ctx context.Context, user brain.User) (brain.User, error)

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id string) (brain.User, error)

	// GetUserByName retrieves a user by username.
	GetUserByName(ctx context.Context, username string) (brain.User, error)

	// CreateContent persists a new content item owned by content.UserID.
	CreateContent(ctx context.Context, content brain.Content) (brain.Content, error)

	// ListContent returns all content owned by the given user.
	ListContent(ctx context.Context, userID string) ([]brain.Content, error)

	// DeleteContent removes a content item scoped to its owner. A row
	// that does not exist under that owner yields NotFoundError, whether
	// it belongs to someone else or never existed.
	DeleteContent(ctx context.Context, id, userID string) error

	// PutShareLink persists a share link. At most one exists per user;
	// if one already exists for link.UserID the existing row is returned
	// unchanged.
	PutShareLink(ctx context.Context, link brain.ShareLink) (brain.ShareLink, error)

	// GetShareLinkByUser retrieves a user's share link, if any.
	GetShareLinkByUser(ctx context.Context, userID string) (brain.ShareLink, error)

	// GetShareLinkByHash resolves a public hash to its share link.
	GetShareLinkByHash(ctx context.Context, hash string) (brain.ShareLink, error)

	// DeleteShareLink removes a user's share link. Deleting a link that
	// does not exist is a no-op.
	DeleteShareLink(ctx context.Context, userID string) error

	// Close closes the store and releases any resources.
	Close() error
}
