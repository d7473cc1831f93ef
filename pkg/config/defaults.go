package config

const (
	defaultServerListen = ":8080"

	defaultStorageDriver     = "sqlite"
	defaultStorageSQLitePath = "secondbrain.db"

	defaultVectorProvider   = "sqlite"
	defaultVectorSQLitePath = "secondbrain-vectors.db"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultTokenIssuer   = "secondbrain"
	defaultTokenTTLHours = 24

	defaultFrontendOrigin = "http://localhost:5173"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultStorageSQLitePath,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			SQLitePath: defaultVectorSQLitePath,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Auth: AuthConfig{
			TokenIssuer:   defaultTokenIssuer,
			TokenTTLHours: defaultTokenTTLHours,
		},
		Frontend: FrontendConfig{
			Origin: defaultFrontendOrigin,
		},
	}
}
