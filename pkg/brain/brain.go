// Package brain defines the core domain types for the second brain:
// users, saved content items, and share links.
package brain

import "strings"

// ContentType classifies a saved item by its source.
type ContentType string

const (
	TypeYoutube ContentType = "youtube"
	TypeTwitter ContentType = "twitter"
	TypeReddit  ContentType = "reddit"
	TypeLink    ContentType = "link"
)

// Valid reports whether t is one of the supported content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeYoutube, TypeTwitter, TypeReddit, TypeLink:
		return true
	}
	return false
}

// User is an account that owns content and at most one share link.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Content is a single saved item. The owner is fixed at creation and
// never reassigned.
type Content struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Link        string      `json:"link"`
	Type        ContentType `json:"type"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags"`
	UserID      string      `json:"userId"`
}

// CombinedText builds the text that gets embedded when a content item
// is indexed: title, description, type, and link joined by spaces.
// Queries embed raw user input instead; the two paths are intentionally
// not symmetric.
func (c Content) CombinedText() string {
	return strings.TrimSpace(c.Title + " " + c.Description + " " + string(c.Type) + " " + c.Link)
}

// ShareLink maps an opaque hash to the user whose collection it
// exposes. At most one exists per user.
type ShareLink struct {
	Hash   string `json:"hash"`
	UserID string `json:"userId"`
}

// Summary is the trimmed view of a content item returned by semantic
// queries.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Link        string `json:"link"`
}
