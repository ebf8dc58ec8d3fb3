// Package service assembles the MCP server: it binds the tool surface
// defined in the domain package to a game service and serves the
// protocol over stdio.
package service

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/game/service"
	"github.com/fablestack/engine/internal/mcp/domain"
)

const (
	// serverName identifies the MCP server implementation.
	serverName = "fablestack-engine"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server wraps an MCP server bound to a game service.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server exposing the engine's tool surface.
func New(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("game service is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.SessionCreateTool(), domain.SessionCreateHandler(svc))
	mcp.AddTool(mcpServer, domain.SessionListTool(), domain.SessionListHandler(svc))
	mcp.AddTool(mcpServer, domain.SessionDeleteTool(), domain.SessionDeleteHandler(svc))

	mcp.AddTool(mcpServer, domain.CombatBeginTool(), domain.CombatBeginHandler(svc))
	mcp.AddTool(mcpServer, domain.CombatAttackTool(), domain.CombatAttackHandler(svc))
	mcp.AddTool(mcpServer, domain.CombatFleeTool(), domain.CombatFleeHandler(svc))
	mcp.AddTool(mcpServer, domain.CombatStateTool(), domain.CombatStateHandler(svc))

	mcp.AddTool(mcpServer, domain.SkillCheckTool(), domain.SkillCheckHandler(svc))
	mcp.AddTool(mcpServer, domain.InventoryDeltaTool(), domain.InventoryDeltaHandler(svc))
	mcp.AddTool(mcpServer, domain.InventoryGetTool(), domain.InventoryGetHandler(svc))

	mcp.AddTool(mcpServer, domain.HistoryGetTool(), domain.HistoryGetHandler(svc))
	mcp.AddTool(mcpServer, domain.RestorePointsTool(), domain.RestorePointsHandler(svc))
	mcp.AddTool(mcpServer, domain.HistoryRestoreTool(), domain.HistoryRestoreHandler(svc))

	mcp.AddTool(mcpServer, domain.PlayTurnTool(), domain.PlayTurnHandler(svc))
	mcp.AddTool(mcpServer, domain.RollDiceTool(), domain.RollDiceHandler())

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("mcp server is not initialized")
	}
	return s.mcpServer.Run(ctx, transport)
}
