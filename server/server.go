package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghiac/ephdash"
	"github.com/ghiac/ephdash/config"
	"github.com/ghiac/ephdash/log"
)

// ShutdownTimeout bounds how long in-flight requests may finish after Start's
// context is cancelled
const ShutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	dashboard *ephdash.Dashboard
	router    *gin.Engine
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, d *ephdash.Dashboard) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	d.RegisterRoutes(router)

	return &Server{
		config:    cfg,
		dashboard: d,
		router:    router,
	}
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	address := s.config.GetAddress()
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Log.Infof("[Server] 🚀 Starting HTTP server on %s", ln.Addr())
	log.Log.Infof("[Server] Available endpoints:")
	log.Log.Infof("[Server]   GET  / - Your env, its logs and the launch form")
	log.Log.Infof("[Server]   GET  /envs - All envs")
	if s.config.Features.ChartEnabled {
		log.Log.Infof("[Server]   GET  /envs/chart - Expiration chart")
	}
	log.Log.Infof("[Server]   POST /api/envs/:name/logs - Append env output")
	log.Log.Infof("[Server]   GET  /health - Health check")

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Log.Infof("[Server] 🛑 Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	log.Log.Infof("[Server] ✅ HTTP server stopped")
	return nil
}

// requestLogger logs each request through the dashboard logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := fmt.Sprintf("[HTTP] %s %s | %d | %v", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		switch {
		case status >= http.StatusInternalServerError:
			log.Log.Errorf("%s", line)
		case status >= http.StatusBadRequest:
			log.Log.Warnf("%s", line)
		default:
			log.Log.Debugf("%s", line)
		}
	}
}
