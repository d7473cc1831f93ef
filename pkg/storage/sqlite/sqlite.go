// Package sqlite provides a SQLite-backed content store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/secondbrainhq/secondbrain/pkg/brain"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
)

// Driver implements storage.Driver using SQLite via database/sql.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed content store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{db: db}, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contents (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			link        TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contents_user ON contents(user_id)`,
		`CREATE TABLE IF NOT EXISTS share_links (
			hash    TEXT NOT NULL,
			user_id TEXT NOT NULL UNIQUE REFERENCES users(id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

// CreateUser persists a new user.
func (d *Driver) CreateUser(ctx context.Context, user brain.User) (brain.User, error) {
	if user.Username == "" {
		return brain.User{}, errors.New("username is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users(id, username, password_hash) VALUES (?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return brain.User{}, storage.ErrUsernameTaken
		}
		return brain.User{}, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (d *Driver) GetUser(ctx context.Context, id string) (brain.User, error) {
	var user brain.User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return brain.User{}, storage.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return brain.User{}, fmt.Errorf("querying user: %w", err)
	}

	return user, nil
}

// GetUserByName retrieves a user by username.
func (d *Driver) GetUserByName(ctx context.Context, username string) (brain.User, error) {
	var user brain.User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return brain.User{}, storage.NotFoundError{Kind: "user", ID: username}
	}
	if err != nil {
		return brain.User{}, fmt.Errorf("querying user: %w", err)
	}

	return user, nil
}

// CreateContent persists a new content item.
func (d *Driver) CreateContent(ctx context.Context, content brain.Content) (brain.Content, error) {
	if content.UserID == "" {
		return brain.Content{}, errors.New("content owner is required")
	}
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.Tags == nil {
		content.Tags = []string{}
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO contents(id, title, link, type, description, tags, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		content.ID, content.Title, content.Link, string(content.Type),
		content.Description, strings.Join(content.Tags, ","), content.UserID,
	)
	if err != nil {
		return brain.Content{}, fmt.Errorf("inserting content: %w", err)
	}

	return content, nil
}

// ListContent returns all content owned by the given user.
func (d *Driver) ListContent(ctx context.Context, userID string) ([]brain.Content, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, link, type, description, tags, user_id
		 FROM contents WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying contents: %w", err)
	}
	defer rows.Close()

	contents := make([]brain.Content, 0)
	for rows.Next() {
		var c brain.Content
		var ctype, tags string
		if err := rows.Scan(&c.ID, &c.Title, &c.Link, &ctype, &c.Description, &tags, &c.UserID); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		c.Type = brain.ContentType(ctype)
		c.Tags = splitTags(tags)
		contents = append(contents, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contents: %w", err)
	}

	return contents, nil
}

// DeleteContent removes a content item scoped to its owner.
func (d *Driver) DeleteContent(ctx context.Context, id, userID string) error {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM contents WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return storage.NotFoundError{Kind: "content", ID: id}
	}

	return nil
}

// PutShareLink persists a share link, returning the existing row when
// one already exists for the user.
func (d *Driver) PutShareLink(ctx context.Context, link brain.ShareLink) (brain.ShareLink, error) {
	if link.UserID == "" || link.Hash == "" {
		return brain.ShareLink{}, errors.New("share link requires a hash and owner")
	}

	// ON CONFLICT DO NOTHING keeps enable idempotent under the unique
	// user_id index; the subsequent read returns whichever hash won.
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO share_links(hash, user_id) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		link.Hash, link.UserID,
	)
	if err != nil {
		return brain.ShareLink{}, fmt.Errorf("inserting share link: %w", err)
	}

	return d.GetShareLinkByUser(ctx, link.UserID)
}

// GetShareLinkByUser retrieves a user's share link, if any.
func (d *Driver) GetShareLinkByUser(ctx context.Context, userID string) (brain.ShareLink, error) {
	var link brain.ShareLink
	err := d.db.QueryRowContext(ctx,
		`SELECT hash, user_id FROM share_links WHERE user_id = ?`, userID,
	).Scan(&link.Hash, &link.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return brain.ShareLink{}, storage.NotFoundError{Kind: "share link", ID: userID}
	}
	if err != nil {
		return brain.ShareLink{}, fmt.Errorf("querying share link: %w", err)
	}

	return link, nil
}

// GetShareLinkByHash resolves a public hash to its share link.
func (d *Driver) GetShareLinkByHash(ctx context.Context, hash string) (brain.ShareLink, error) {
	var link brain.ShareLink
	err := d.db.QueryRowContext(ctx,
		`SELECT hash, user_id FROM share_links WHERE hash = ?`, hash,
	).Scan(&link.Hash, &link.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return brain.ShareLink{}, storage.NotFoundError{Kind: "share link", ID: hash}
	}
	if err != nil {
		return brain.ShareLink{}, fmt.Errorf("querying share link: %w", err)
	}

	return link, nil
}

// DeleteShareLink removes a user's share link if present.
func (d *Driver) DeleteShareLink(ctx context.Context, userID string) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("deleting share link: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ",")
}

var _ storage.Driver = (*Driver)(nil)
