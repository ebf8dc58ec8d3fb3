package domain

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/game/service"
)

// HistoryGetInput represents the MCP tool input for reading history.
type HistoryGetInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	FromSeq   uint64 `json:"from_seq,omitempty" jsonschema:"exclusive lower bound, returns events after this sequence, 0 reads from the start"`
	ToSeq     uint64 `json:"to_seq,omitempty" jsonschema:"last sequence to include, 0 reads to the end"`
}

// HistoryGetResult represents the MCP tool output for reading history.
type HistoryGetResult struct {
	Events []EventEntry `json:"events" jsonschema:"events in sequence order"`
}

// RestorePointsInput represents the MCP tool input for listing restore points.
type RestorePointsInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// RestorePointEntry is one rollback candidate.
type RestorePointEntry struct {
	Seq       uint64 `json:"seq" jsonschema:"sequence of the player-input event"`
	Timestamp string `json:"timestamp" jsonschema:"RFC3339 timestamp"`
	Preview   string `json:"preview" jsonschema:"truncated player input text"`
}

// RestorePointsResult represents the MCP tool output for listing restore points.
type RestorePointsResult struct {
	Points []RestorePointEntry `json:"points" jsonschema:"rollback candidates in sequence order"`
}

// HistoryRestoreInput represents the MCP tool input for rolling back.
type HistoryRestoreInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	TargetSeq uint64 `json:"target_seq" jsonschema:"sequence that becomes the newest retained event"`
}

// HistoryRestoreResult represents the MCP tool output for rolling back.
type HistoryRestoreResult struct {
	TailSeq uint64 `json:"tail_seq" jsonschema:"newest retained sequence after the rollback"`
}

// HistoryGetTool defines the MCP tool schema for reading history.
func HistoryGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "history_get",
		Description: "Reads the session's event journal within an inclusive sequence range.",
	}
}

// RestorePointsTool defines the MCP tool schema for listing restore points.
func RestorePointsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "restore_points_get",
		Description: "Lists the sequences the session can be rolled back to, one per player input.",
	}
}

// HistoryRestoreTool defines the MCP tool schema for rolling back.
func HistoryRestoreTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "history_restore",
		Description: "Rolls the session back to a restore point. Events after the target are discarded permanently; their sequence numbers are never reused.",
	}
}

// HistoryGetHandler executes a history read request.
func HistoryGetHandler(svc *service.Service) mcp.ToolHandlerFor[HistoryGetInput, HistoryGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryGetInput) (*mcp.CallToolResult, HistoryGetResult, error) {
		events, err := svc.GetHistory(ctx, input.SessionID, input.FromSeq, input.ToSeq)
		if err != nil {
			return nil, HistoryGetResult{}, toolError("history read", err)
		}
		return nil, HistoryGetResult{Events: eventEntries(events)}, nil
	}
}

// RestorePointsHandler executes a restore points request.
func RestorePointsHandler(svc *service.Service) mcp.ToolHandlerFor[RestorePointsInput, RestorePointsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RestorePointsInput) (*mcp.CallToolResult, RestorePointsResult, error) {
		points, err := svc.GetRestorePoints(ctx, input.SessionID)
		if err != nil {
			return nil, RestorePointsResult{}, toolError("restore points", err)
		}
		result := RestorePointsResult{Points: make([]RestorePointEntry, 0, len(points))}
		for _, point := range points {
			result.Points = append(result.Points, RestorePointEntry{
				Seq:       point.Seq,
				Timestamp: point.Timestamp.UTC().Format(time.RFC3339),
				Preview:   point.Preview,
			})
		}
		return nil, result, nil
	}
}

// HistoryRestoreHandler executes a rollback request.
func HistoryRestoreHandler(svc *service.Service) mcp.ToolHandlerFor[HistoryRestoreInput, HistoryRestoreResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryRestoreInput) (*mcp.CallToolResult, HistoryRestoreResult, error) {
		tail, err := svc.RestoreHistory(ctx, input.SessionID, input.TargetSeq)
		if err != nil {
			return nil, HistoryRestoreResult{}, toolError("history restore", err)
		}
		return nil, HistoryRestoreResult{TailSeq: tail}, nil
	}
}
