// Package inmemory provides a map-backed content store, used for tests
// and as the default development backend.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards all three maps below.
	mu sync.RWMutex

	users    map[string]brain.User    // keyed by user id
	contents map[string]brain.Content // keyed by content id
	links    map[string]brain.ShareLink
}

// NewDriver creates a new in-memory content store.
func NewDriver() *Driver {
	return &Driver{
		users:    make(map[string]brain.User),
		contents: make(map[string]brain.Content),
		links:    make(map[string]brain.ShareLink),
	}
}

// CreateUser persists a new user, assigning an id when absent.
func (d *Driver) CreateUser(_ context.Context, user brain.User) (brain.User, error) {
	if user.Username == "" {
		return brain.User{}, errors.New("username is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if existing.Username == user.Username {
			return brain.User{}, storage.ErrUsernameTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	d.users[user.ID] = user

	return user, nil
}

// GetUser retrieves a user by id.
func (d *Driver) GetUser(_ context.Context, id string) (brain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[id]
	if !ok {
		return brain.User{}, storage.NotFoundError{Kind: "user", ID: id}
	}

	return user, nil
}

// GetUserByName retrieves a user by username.
func (d *Driver) GetUserByName(_ context.Context, username string) (brain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, user := range d.users {
		if user.Username == username {
			return user, nil
		}
	}

	return brain.User{}, storage.NotFoundError{Kind: "user", ID: username}
}

// CreateContent persists a new content item, assigning an id when
// absent.
func (d *Driver) CreateContent(_ context.Context, content brain.Content) (brain.Content, error) {
	if content.UserID == "" {
		return brain.Content{}, errors.New("content owner is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.Tags == nil {
		content.Tags = []string{}
	}
	d.contents[content.ID] = content

	return content, nil
}

// ListContent returns all content owned by the given user.
func (d *Driver) ListContent(_ context.Context, userID string) ([]brain.Content, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	contents := make([]brain.Content, 0)
	for _, content := range d.contents {
		if content.UserID == userID {
			contents = append(contents, content)
		}
	}

	return contents, nil
}

// DeleteContent removes a content item scoped to its owner.
func (d *Driver) DeleteContent(_ context.Context, id, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	content, ok := d.contents[id]
	if !ok || content.UserID != userID {
		return storage.NotFoundError{Kind: "content", ID: id}
	}

	delete(d.contents, id)
	return nil
}

// PutShareLink persists a share link, returning the existing row when
// one is already present for the user.
func (d *Driver) PutShareLink(_ context.Context, link brain.ShareLink) (brain.ShareLink, error) {
	if link.UserID == "" || link.Hash == "" {
		return brain.ShareLink{}, errors.New("share link requires a hash and owner")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.links[link.UserID]; ok {
		return existing, nil
	}

	d.links[link.UserID] = link
	return link, nil
}

// GetShareLinkByUser retrieves a user's share link, if any.
func (d *Driver) GetShareLinkByUser(_ context.Context, userID string) (brain.ShareLink, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	link, ok := d.links[userID]
	if !ok {
		return brain.ShareLink{}, storage.NotFoundError{Kind: "share link", ID: userID}
	}

	return link, nil
}

// GetShareLinkByHash resolves a public hash to its share link.
func (d *Driver) GetShareLinkByHash(_ context.Context, hash string) (brain.ShareLink, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, link := range d.links {
		if link.Hash == hash {
			return link, nil
		}
	}

	return brain.ShareLink{}, storage.NotFoundError{Kind: "share link", ID: hash}
}

// DeleteShareLink removes a user's share link if present.
func (d *Driver) DeleteShareLink(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.links, userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
