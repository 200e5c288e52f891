// Package server exposes the research pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/inquiro"
	"github.com/soundprediction/inquiro/pkg/config"
	"github.com/soundprediction/inquiro/pkg/server/handlers"
	"github.com/soundprediction/inquiro/pkg/storage"
	"github.com/soundprediction/inquiro/pkg/types"
)

// Deps holds the collaborators the server exposes. Researcher is required;
// the rest may be nil, disabling the corresponding endpoints.
type Deps struct {
	Researcher  inquiro.Researcher
	Reporter    inquiro.ErrorReporter
	Store       storage.Store
	Synthesizer handlers.Synthesizer
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	deps   Deps
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.deps.Store)
	researchHandler := handlers.NewResearchHandler(s.deps.Researcher, s.deps.Store, nil)
	synthesizeHandler := handlers.NewSynthesizeHandler(s.deps.Synthesizer, s.deps.Store, nil)
	errorsHandler := handlers.NewErrorsHandler(s.deps.Reporter)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		api.POST("/research", researchHandler.Research)
		api.GET("/research/:id", researchHandler.GetResearch)
		api.POST("/synthesize", synthesizeHandler.Synthesize)
		api.GET("/errors/stats", errorsHandler.Stats)
	}
}

// Router returns the configured gin engine. Setup must have been called.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware stamps each request with an ID and a source marker that
// downstream logging picks up.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
