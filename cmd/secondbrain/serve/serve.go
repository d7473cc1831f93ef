// Package servecmder provides the serve command running the HTTP API.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/api"
	"github.com/secondbrainhq/secondbrain/pkg/auth"
	"github.com/secondbrainhq/secondbrain/pkg/config"
	"github.com/secondbrainhq/secondbrain/pkg/embeddings"
	embeddingutils "github.com/secondbrainhq/secondbrain/pkg/embeddings/utils"
	"github.com/secondbrainhq/secondbrain/pkg/logger"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
	"github.com/secondbrainhq/secondbrain/pkg/storage/inmemory"
	"github.com/secondbrainhq/secondbrain/pkg/storage/postgres"
	"github.com/secondbrainhq/secondbrain/pkg/storage/sqlite"
	"github.com/secondbrainhq/secondbrain/pkg/vector"
	vectorutils "github.com/secondbrainhq/secondbrain/pkg/vector/utils"
)

type ServeCommander struct {
	listen         string
	storageDriver  string
	sqlitePath     string
	postgresDSN    string
	vectorProvider string
	vectorTarget   string
	vectorSQLite   string
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	embeddingDims  uint
	jwtSecret      string
	frontendOrigin string
	debug          bool

	viper  *viper.Viper
	logger *zap.Logger
}

// serveFlags is the flag registry for the serve command.
var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name: "listen", Shorthand: "l",
		ViperKey:    "server.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagStorageDriver: {
		Name:        "storage-driver",
		ViperKey:    "storage.driver",
		Description: "Content store backend (inmemory, sqlite, postgres)",
	},
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the content SQLite database",
	},
	config.FlagPostgresDSN: {
		Name:        "postgres-dsn",
		ViperKey:    "storage.postgres_dsn",
		Description: "Postgres connection string for the content store",
	},
	config.FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store backend (chroma, sqlite)",
	},
	config.FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store URL (chroma)",
	},
	config.FlagVectorSQLite: {
		Name:        "vector-sqlite",
		ViperKey:    "vector_store.sqlite_path",
		Description: "Path to the vector SQLite database",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (ollama)",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	config.FlagJWTSecret: {
		Name:        "jwt-secret",
		ViperKey:    "auth.jwt_secret",
		Description: "HMAC secret for signing auth tokens",
	},
	config.FlagFrontendOrigin: {
		Name:        "frontend-origin",
		ViperKey:    "frontend.origin",
		Description: "Frontend origin for CORS and share links",
	},
}

// serveFlagKeys lists every registry key the serve command binds.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorSQLite,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagJWTSecret,
	config.FlagFrontendOrigin,
}

const serveLongDesc string = `Run the Second Brain HTTP API server.

The server exposes signup/signin, content management, semantic query,
and public share links. Configuration follows the precedence chain
flag > environment (SECONDBRAIN_*) > config.toml > defaults.`

const serveShortDesc string = "Run the Second Brain API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			cmder.resolve()
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorSQLite, &cmder.vectorSQLite)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, serveFlags, config.FlagJWTSecret, &cmder.jwtSecret)
	config.AddStringFlag(cmd, serveFlags, config.FlagFrontendOrigin, &cmder.frontendOrigin)

	return cmd
}

// resolve reads final values from the viper precedence chain into the
// commander fields.
func (c *ServeCommander) resolve() {
	c.listen = c.viper.GetString("server.listen")
	c.storageDriver = c.viper.GetString("storage.driver")
	c.sqlitePath = c.viper.GetString("storage.sqlite_path")
	c.postgresDSN = c.viper.GetString("storage.postgres_dsn")
	c.vectorProvider = c.viper.GetString("vector_store.provider")
	c.vectorTarget = c.viper.GetString("vector_store.target")
	c.vectorSQLite = c.viper.GetString("vector_store.sqlite_path")
	c.embeddingProv = c.viper.GetString("embedding.provider")
	c.embeddingTgt = c.viper.GetString("embedding.target")
	c.embeddingModel = c.viper.GetString("embedding.model")
	c.embeddingDims = c.viper.GetUint("embedding.dimensions")
	c.jwtSecret = c.viper.GetString("auth.jwt_secret")
	c.frontendOrigin = c.viper.GetString("frontend.origin")
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	if c.jwtSecret == "" {
		return errors.New("auth.jwt_secret is not set (use --jwt-secret, SECONDBRAIN_AUTH_JWT_SECRET, or config.toml)")
	}

	tokenTTL := time.Duration(c.viper.GetUint("auth.token_ttl_hours")) * time.Hour
	tokens, err := auth.NewTokenManager(c.jwtSecret, c.viper.GetString("auth.token_issuer"), tokenTTL)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	storer, err := c.newStorageDriver()
	if err != nil {
		return err
	}
	defer storer.Close()

	embedder, vectors, err := c.newIndexPipeline()
	if err != nil {
		return err
	}
	if embedder != nil {
		defer embedder.Close()
	}
	if vectors != nil {
		defer vectors.Close()
	}

	server := api.NewServer(api.Config{
		ListenAddr:     c.listen,
		FrontendOrigin: c.frontendOrigin,
	}, storer, tokens, embedder, vectors, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) newStorageDriver() (storage.Driver, error) {
	switch c.storageDriver {
	case "inmemory":
		c.logger.Info("using in-memory content store")
		return inmemory.NewDriver(), nil

	case "sqlite":
		driver, err := sqlite.NewDriver(c.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite content store: %w", err)
		}
		c.logger.Info("using SQLite content store", zap.String("path", c.sqlitePath))
		return driver, nil

	case "postgres":
		if c.postgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}
		driver, err := postgres.NewDriver(context.Background(), c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("creating postgres content store: %w", err)
		}
		c.logger.Info("using Postgres content store")
		return driver, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.storageDriver)
	}
}

// newIndexPipeline builds the embedder and vector driver. An empty
// embedding provider disables semantic query entirely; the API then
// serves content without indexing.
func (c *ServeCommander) newIndexPipeline() (embeddings.Embedder, vector.Driver, error) {
	if c.embeddingProv == "" || c.embeddingProv == "none" {
		c.logger.Warn("embedding provider disabled, semantic query unavailable")
		return nil, nil, nil
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProv,
		TargetURL:    c.embeddingTgt,
		Model:        c.embeddingModel,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	vectors, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: c.vectorProvider,
		TargetURL:    c.vectorTarget,
		SQLitePath:   c.vectorSQLite,
		Dimensions:   c.embeddingDims,
		Logger:       c.logger,
	})
	if err != nil {
		embedder.Close()
		return nil, nil, fmt.Errorf("creating vector driver: %w", err)
	}

	return embedder, vectors, nil
}
