package mcpserver

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qiniu/seqmcp/internal/config"
	"github.com/qiniu/seqmcp/internal/middleware"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/qiniu/seqmcp/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	ServerName    = "seq-mcp-server"
	ServerVersion = "0.1.0"

	shutdownTimeout = 10 * time.Second
)

// Server exposes the tool catalog over MCP.
type Server struct {
	cfg     config.ServerConfig
	mcp     *server.MCPServer
	metrics *observability.MetricsCollector
}

func NewServer(cfg config.ServerConfig, dispatcher *tools.Dispatcher, metrics *observability.MetricsCollector) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, def := range tools.Catalog() {
		mcpServer.AddTool(BuildTool(def), ToolHandler(def.Name, dispatcher, metrics))
	}

	return &Server{cfg: cfg, mcp: mcpServer, metrics: metrics}
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// Run serves on the configured transport until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportHTTP:
		return s.RunHTTP(ctx)
	default:
		return s.RunStdio(ctx)
	}
}

// RunStdio serves MCP over stdin/stdout. Nothing else may write to stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(log.Logger, "", 0))

	log.Info().Msg("Seq MCP server running on stdio")
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// Router mounts the streamable HTTP handler together with /healthz and
// /metrics.
func (s *Server) Router(mcpHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(s.metrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if reg := s.metrics.GetRegistry(); reg != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}
	router.Any(s.cfg.Endpoint, middleware.Authentication(s.cfg.AuthToken), gin.WrapH(mcpHandler))
	return router
}

// RunHTTP serves MCP over streamable HTTP and shuts down gracefully when
// ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context) error {
	streamable := server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(s.cfg.Endpoint))
	httpServer := &http.Server{
		Addr:              s.cfg.BindAddr,
		Handler:           s.Router(streamable),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Seq MCP service listening on %s%s", s.cfg.BindAddr, s.cfg.Endpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Starting shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := streamable.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close MCP sessions")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("Seq MCP service shut down")
	return nil
}
