package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/game/service"
	"github.com/fablestack/engine/internal/game/stream"
)

// PlayTurnInput represents the MCP tool input for playing a turn.
type PlayTurnInput struct {
	SessionID   string `json:"session_id" jsonschema:"session identifier"`
	PlayerInput string `json:"player_input" jsonschema:"the player's free-form action text"`
}

// TurnFrame is one element of a turn's ordered output.
type TurnFrame struct {
	Type    string      `json:"type" jsonschema:"frame type (event, token, error, end-of-turn)"`
	Event   *EventEntry `json:"event,omitempty" jsonschema:"committed event for event frames"`
	Token   string      `json:"token,omitempty" jsonschema:"narration text for token frames"`
	Code    string      `json:"code,omitempty" jsonschema:"machine-readable error code for error frames"`
	Message string      `json:"message,omitempty" jsonschema:"error description for error frames"`
	Status  string      `json:"status,omitempty" jsonschema:"transport-level error class (gRPC code name) for error frames"`
	// Recoverable signals that a corrected or retried action can succeed.
	Recoverable bool `json:"recoverable,omitempty" jsonschema:"whether a corrected action can succeed"`
}

// PlayTurnResult represents the MCP tool output for playing a turn.
type PlayTurnResult struct {
	Frames []TurnFrame `json:"frames" jsonschema:"the turn's frames in emission order"`
}

// PlayTurnTool defines the MCP tool schema for playing a turn.
func PlayTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "play_turn",
		Description: "Runs one full turn: journals the player input, resolves and commits mechanics, then streams narration. Mechanical events always precede narration in the frame order.",
	}
}

// PlayTurnHandler executes a play turn request, draining the turn's
// frame stream into an ordered list.
func PlayTurnHandler(svc *service.Service) mcp.ToolHandlerFor[PlayTurnInput, PlayTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayTurnInput) (*mcp.CallToolResult, PlayTurnResult, error) {
		frames, err := svc.StreamTurn(ctx, input.SessionID, input.PlayerInput)
		if err != nil {
			return nil, PlayTurnResult{}, toolError("play turn", err)
		}
		var result PlayTurnResult
		for frame := range frames {
			out := TurnFrame{Type: string(frame.Type)}
			switch frame.Type {
			case stream.FrameTypeEvent:
				entry := eventEntry(*frame.Event)
				out.Event = &entry
			case stream.FrameTypeToken:
				out.Token = frame.Token
			case stream.FrameTypeError:
				out.Code = string(frame.Code)
				out.Message = frame.Message
				out.Status = frame.Status
				out.Recoverable = frame.Recoverable
			}
			result.Frames = append(result.Frames, out)
		}
		return nil, result, nil
	}
}
