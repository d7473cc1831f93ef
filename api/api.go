package api

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/auth"
	"github.com/secondbrainhq/secondbrain/pkg/embeddings"
	"github.com/secondbrainhq/secondbrain/pkg/query"
	"github.com/secondbrainhq/secondbrain/pkg/share"
	"github.com/secondbrainhq/secondbrain/pkg/storage"
	"github.com/secondbrainhq/secondbrain/pkg/vector"
)

// Server is the HTTP API server for the second brain.
type Server struct {
	config   Config
	storer   storage.Driver
	tokens   *auth.TokenManager
	embedder embeddings.Embedder
	vectors  vector.Driver
	queries  *query.Service
	shares   *share.Service
	logger   *zap.Logger
	app      *fiber.App

	// indexing tracks detached indexing goroutines so tests and
	// shutdown can wait for them.
	indexing sync.WaitGroup
}

// NewServer creates a new API server. The embedder and vector driver
// may be nil, in which case semantic query is reported as unavailable
// and content is served without indexing.
func NewServer(config Config, storer storage.Driver, tokens *auth.TokenManager, embedder embeddings.Embedder, vectors vector.Driver, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	if config.FrontendOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: config.FrontendOrigin,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	s := &Server{
		config:   config,
		storer:   storer,
		tokens:   tokens,
		embedder: embedder,
		vectors:  vectors,
		shares:   share.NewService(storer, logger),
		logger:   logger,
		app:      app,
	}
	if embedder != nil && vectors != nil {
		s.queries = query.NewService(embedder, vectors, logger)
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/api/v1")
	v1.Post("/signup", s.handleSignup)
	v1.Post("/signin", s.handleSignin)
	v1.Get("/brain/:hash", s.handleResolveShare)

	authed := v1.Group("", s.requireAuth)
	authed.Get("/content", s.handleListContent)
	authed.Post("/content", s.handleCreateContent)
	authed.Delete("/content", s.handleDeleteContent)
	authed.Post("/query", s.handleQuery)
	authed.Post("/brain/share", s.handleShare)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server and waits for
// in-flight indexing goroutines.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.indexing.Wait()
	return err
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}
