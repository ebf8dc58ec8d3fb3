package domain

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/game/service"
)

// SessionCreateInput represents the MCP tool input for session creation.
type SessionCreateInput struct {
	Name string `json:"name" jsonschema:"display name for the session"`
}

// SessionCreateResult represents the MCP tool output for session creation.
type SessionCreateResult struct {
	ID        string `json:"id" jsonschema:"session identifier"`
	Name      string `json:"name" jsonschema:"session name"`
	CreatedAt string `json:"created_at" jsonschema:"RFC3339 timestamp when the session was created"`
}

// SessionListInput represents the MCP tool input for listing sessions.
type SessionListInput struct{}

// SessionListEntry is one session in a listing.
type SessionListEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SessionListResult represents the MCP tool output for listing sessions.
type SessionListResult struct {
	Sessions []SessionListEntry `json:"sessions" jsonschema:"all known sessions"`
}

// SessionDeleteInput represents the MCP tool input for session deletion.
type SessionDeleteInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// SessionDeleteResult represents the MCP tool output for session deletion.
type SessionDeleteResult struct {
	Deleted bool `json:"deleted" jsonschema:"whether the session was removed"`
}

// SessionCreateTool defines the MCP tool schema for session creation.
func SessionCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_create",
		Description: "Creates a new game session with an empty event journal.",
	}
}

// SessionListTool defines the MCP tool schema for listing sessions.
func SessionListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_list",
		Description: "Lists all known game sessions.",
	}
}

// SessionDeleteTool defines the MCP tool schema for session deletion.
func SessionDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_delete",
		Description: "Deletes a session together with its journal and encounters.",
	}
}

// SessionCreateHandler executes a session create request.
func SessionCreateHandler(svc *service.Service) mcp.ToolHandlerFor[SessionCreateInput, SessionCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionCreateInput) (*mcp.CallToolResult, SessionCreateResult, error) {
		session, err := svc.CreateSession(ctx, input.Name)
		if err != nil {
			return nil, SessionCreateResult{}, toolError("session create", err)
		}
		return nil, SessionCreateResult{
			ID:        session.ID,
			Name:      session.Name,
			CreatedAt: session.CreatedAt.Format(time.RFC3339),
		}, nil
	}
}

// SessionListHandler executes a session list request.
func SessionListHandler(svc *service.Service) mcp.ToolHandlerFor[SessionListInput, SessionListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SessionListInput) (*mcp.CallToolResult, SessionListResult, error) {
		sessions, err := svc.ListSessions(ctx)
		if err != nil {
			return nil, SessionListResult{}, toolError("session list", err)
		}
		result := SessionListResult{Sessions: make([]SessionListEntry, 0, len(sessions))}
		for _, session := range sessions {
			result.Sessions = append(result.Sessions, SessionListEntry{
				ID:        session.ID,
				Name:      session.Name,
				CreatedAt: session.CreatedAt.Format(time.RFC3339),
				UpdatedAt: session.UpdatedAt.Format(time.RFC3339),
			})
		}
		return nil, result, nil
	}
}

// SessionDeleteHandler executes a session delete request.
func SessionDeleteHandler(svc *service.Service) mcp.ToolHandlerFor[SessionDeleteInput, SessionDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionDeleteInput) (*mcp.CallToolResult, SessionDeleteResult, error) {
		if err := svc.DeleteSession(ctx, input.SessionID); err != nil {
			return nil, SessionDeleteResult{}, toolError("session delete", err)
		}
		return nil, SessionDeleteResult{Deleted: true}, nil
	}
}
