package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent secondbrain configuration stored as
// config.toml in the .secondbrain/ directory. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Auth        AuthConfig        `toml:"auth"`
	Frontend    FrontendConfig    `toml:"frontend"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig holds content store settings.
type StorageConfig struct {
	// Driver selects the content store backend: "inmemory", "sqlite",
	// or "postgres".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider selects the vector backend: "chroma" or "sqlite".
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret,omitempty"`
	TokenIssuer   string `toml:"token_issuer,omitempty"`
	TokenTTLHours uint   `toml:"token_ttl_hours,omitempty"`
}

// FrontendConfig holds the web frontend settings the API needs: the
// CORS origin, which doubles as the base URL for share links.
type FrontendConfig struct {
	Origin string `toml:"origin,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"vector_store.sqlite_path": {
		get: func(c *Config) string { return c.VectorStore.SQLitePath },
		set: func(c *Config, v string) error { c.VectorStore.SQLitePath = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"auth.jwt_secret": {
		get: func(c *Config) string { return c.Auth.JWTSecret },
		set: func(c *Config, v string) error { c.Auth.JWTSecret = v; return nil },
	},
	"auth.token_issuer": {
		get: func(c *Config) string { return c.Auth.TokenIssuer },
		set: func(c *Config, v string) error { c.Auth.TokenIssuer = v; return nil },
	},
	"auth.token_ttl_hours": {
		get: func(c *Config) string {
			if c.Auth.TokenTTLHours == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Auth.TokenTTLHours), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for auth.token_ttl_hours: %w", err)
			}
			c.Auth.TokenTTLHours = uint(n)
			return nil
		},
	},
	"frontend.origin": {
		get: func(c *Config) string { return c.Frontend.Origin },
		set: func(c *Config, v string) error { c.Frontend.Origin = v; return nil },
	},
}
