// Package api provides the HTTP API server for the second brain:
// account signup/signin, content CRUD, semantic query, and public
// share links.
package api

import "time"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// FrontendOrigin is the origin allowed by CORS and the base URL
	// share links are rendered against (e.g., "http://localhost:5173").
	FrontendOrigin string

	// IndexTimeout bounds the detached goroutine that indexes newly
	// created content. Defaults to 30s when zero.
	IndexTimeout time.Duration
}

const defaultIndexTimeout = 30 * time.Second

func (c Config) indexTimeout() time.Duration {
	if c.IndexTimeout > 0 {
		return c.IndexTimeout
	}
	return defaultIndexTimeout
}
