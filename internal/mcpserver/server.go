// Package mcpserver exposes a project's tasks to MCP clients over
// streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/taskrun"
)

// EngineFactory builds a fresh engine for one tool call, so that every call
// sees the project's current configuration and files.
type EngineFactory func(ctx context.Context) (*taskrun.Engine, error)

// Server serves the list-tasks and run-task tools on a local HTTP
// listener.
type Server struct {
	factory EngineFactory
	version string

	mu   sync.Mutex
	http *http.Server
	addr *net.TCPAddr

	// runMu serializes task runs; they share the project directory.
	runMu sync.Mutex
}

// New creates a server whose tools use factory. Nothing listens until
// Start.
func New(factory EngineFactory, version string) *Server {
	return &Server{factory: factory, version: version}
}

func (s *Server) newMCPServer() *server.MCPServer {
	m := server.NewMCPServer("snek", s.version, server.WithToolCapabilities(true))
	s.registerTools(m)
	return m
}

// Start listens on addr and serves the MCP endpoint at /mcp. An empty addr
// picks a free localhost port. It returns the bound port.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.http != nil {
		return 0, errors.New("mcp server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.addr = listener.Addr().(*net.TCPAddr)

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.newMCPServer(), server.WithStateLess(true)))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.http = srv

	logger.Debug("Serving MCP on %s", s.addr)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP server error: %v", err)
		}
	}()
	return s.addr.Port, nil
}

// Stop shuts the listener down, waiting up to five seconds for in-flight
// calls. Stopping a stopped server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(ctx)
	s.http = nil
	if err != nil {
		logger.Warn("Stopping MCP server: %v", err)
		return fmt.Errorf("stopping mcp server: %w", err)
	}
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the endpoint clients connect to.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	host := s.addr.IP.String()
	if s.addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.addr.Port)) + "/mcp"
}
