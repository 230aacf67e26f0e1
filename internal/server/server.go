package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	beamsmcp "github.com/sanonone/beams/internal/mcp"
	"github.com/sanonone/beams/internal/server/ui"
)

// Version is reported by the MCP server and /healthz.
const Version = "0.1.0"

// Server holds the HTTP interface in front of a Runner.
type Server struct {
	Runner *Runner

	httpServer *http.Server
}

// NewServer wires the HTTP routes around an existing Runner.
func NewServer(runner *Runner, httpAddr string) *Server {
	s := &Server{Runner: runner}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Mux
	// Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	// Long-lived and scraped endpoints bypass request logging.
	mcpServer := beamsmcp.NewMCPServer(runner, Version)
	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.HandleFunc("GET /stream", s.handleStream)
	rootMux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil))
	rootMux.Handle("/", handler)

	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /nodes/{id}", s.handleNode)
	mux.HandleFunc("GET /orientation", s.handleGetOrientation)
	mux.HandleFunc("PUT /orientation", s.handlePutOrientation)
	mux.Handle("GET /ui/", http.StripPrefix("/ui/", ui.GetHandler()))
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully. The Runner is stopped by its
// own context.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Starting graceful shutdown of HTTP Server...")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
