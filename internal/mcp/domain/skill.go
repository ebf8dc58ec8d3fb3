package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/core/check"
	"github.com/fablestack/engine/internal/game/service"
	"github.com/fablestack/engine/internal/game/skill"
)

// SkillCheckInput represents the MCP tool input for a skill check.
type SkillCheckInput struct {
	SessionID   string `json:"session_id" jsonschema:"session identifier"`
	CharacterID string `json:"character_id,omitempty" jsonschema:"character attempting the check"`
	SkillName   string `json:"skill_name,omitempty" jsonschema:"skill being tested"`
	StatName    string `json:"stat_name,omitempty" jsonschema:"governing stat name"`
	StatValue   int    `json:"stat_value" jsonschema:"governing stat value"`
	SkillRank   int    `json:"skill_rank" jsonschema:"skill rank"`
	Difficulty  string `json:"difficulty" jsonschema:"difficulty (favorable, normal, unfavorable)"`
}

// SkillCheckResult represents the MCP tool output for a skill check.
type SkillCheckResult struct {
	Target  int        `json:"target" jsonschema:"roll-under target after clamping"`
	Roll    int        `json:"roll" jsonschema:"d100 roll"`
	Success bool       `json:"success" jsonschema:"whether the roll was at or under the target"`
	Margin  int        `json:"margin" jsonschema:"target minus roll"`
	Event   EventEntry `json:"event" jsonschema:"the committed skill-check event"`
}

// SkillCheckTool defines the MCP tool schema for skill checks.
func SkillCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "skill_check",
		Description: "Resolves a d100 roll-under skill check: target is stat*3 + rank*10 shifted by difficulty and clamped to 1..99.",
	}
}

// SkillCheckHandler executes a skill check request.
func SkillCheckHandler(svc *service.Service) mcp.ToolHandlerFor[SkillCheckInput, SkillCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SkillCheckInput) (*mcp.CallToolResult, SkillCheckResult, error) {
		result, evt, err := svc.PerformSkillCheck(ctx, input.SessionID, input.CharacterID, skill.Request{
			StatValue:  input.StatValue,
			SkillRank:  input.SkillRank,
			Difficulty: check.Difficulty(input.Difficulty),
			SkillName:  input.SkillName,
			StatName:   input.StatName,
		})
		if err != nil {
			return nil, SkillCheckResult{}, toolError("skill check", err)
		}
		return nil, SkillCheckResult{
			Target:  result.Target,
			Roll:    result.Roll,
			Success: result.Success,
			Margin:  result.Margin,
			Event:   eventEntry(evt),
		}, nil
	}
}
