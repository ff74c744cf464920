package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winscene/internal/daemon"
	"github.com/1broseidon/winscene/internal/store"
)

const (
	ServerName    = "winscene"
	ServerVersion = "0.1.0"
)

// ServerConfig holds the collaborators of a Server.
type ServerConfig struct {
	Store store.Store
	// Alive reports process liveness. Nil means daemon.ProcessAlive.
	Alive  daemon.AliveFunc
	Logger *slog.Logger
}

// Server exposes the shared window set over MCP.
type Server struct {
	mcpServer  *mcpsdk.Server
	store      store.Store
	alive      daemon.AliveFunc
	reconciler *daemon.Reconciler
	logger     *slog.Logger
}

// NewServer creates an MCP server over the given store.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	alive := cfg.Alive
	if alive == nil {
		alive = daemon.ProcessAlive
	}

	s := &Server{
		store:  cfg.Store,
		alive:  alive,
		logger: logger,
		reconciler: daemon.NewReconciler(daemon.ReconcilerConfig{
			Logger: logger.With("component", "reconciler"),
		}, cfg.Store, alive),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window registered in the shared scene, in registration order, with its screen rectangle, owning pid and title. Also returns the id counter.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window",
		Description: "Look up one registered window by id.",
	}, s.handleGetWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "clear_windows",
		Description: "Wipe the shared store: all window records and the id counter. Open windows keep drawing their last known set until they next write.",
	}, s.handleClearWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "prune_windows",
		Description: "Remove records of windows whose owning process has exited. Records without a pid are kept.",
	}, s.handlePruneWindows)
}
