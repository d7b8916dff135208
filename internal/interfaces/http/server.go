// Package http exposes the editing session over HTTP.
// This is a thin adapter layer that translates HTTP requests to session calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/application/editor"
	"github.com/garyjia/invoice-editor/internal/render"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
	MaxUploadBytes  int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigin:   "*",
		MaxUploadBytes:  10 << 20,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	session    *editor.Session
	formats    render.Formats
	logger     *zap.Logger

	// done is closed on shutdown to end open event streams
	done      chan struct{}
	closeOnce sync.Once
}

// NewServer creates a new HTTP server serving session
func NewServer(config ServerConfig, session *editor.Session, formats render.Formats, logger *zap.Logger) *Server {
	router := gin.New()

	server := &Server{
		config:  config,
		router:  router,
		session: session,
		formats: formats,
		logger:  logger,
		done:    make(chan struct{}),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.corsMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the configured origin
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.AllowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", s.config.AllowedOrigin)
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.session, s.formats, s.config.MaxUploadBytes, s.logger)
	handlers.done = s.done

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/invoice")
	{
		api.GET("", handlers.GetInvoice)
		api.PATCH("/fields", handlers.SetField)
		api.GET("/totals", handlers.GetTotals)

		// Product lines
		api.POST("/lines", handlers.AddLine)
		api.PUT("/lines/:index", handlers.UpdateLine)
		api.DELETE("/lines/:index", handlers.RemoveLine)

		// Snapshots
		api.GET("/snapshot", handlers.ExportSnapshot)
		api.POST("/snapshot", handlers.ImportSnapshot)
		api.POST("/reset", handlers.Reset)

		// Documents
		api.GET("/document.pdf", handlers.Document("pdf"))
		api.GET("/document.xlsx", handlers.Document("xlsx"))
		api.GET("/preview.png", handlers.Document("png"))

		api.GET("/events", handlers.Events)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the server fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.httpServer.RegisterOnShutdown(s.closeStreams)

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
