package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/core/dice"
)

// DiceSpecInput describes one die to roll.
type DiceSpecInput struct {
	Sides int `json:"sides" jsonschema:"number of sides, must be positive"`
	Count int `json:"count" jsonschema:"how many times to roll, must be positive"`
}

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Dice []DiceSpecInput `json:"dice" jsonschema:"dice to roll, processed in order"`
	Seed int64           `json:"seed,omitempty" jsonschema:"optional seed for reproducible rolls"`
}

// RollEntry captures the results for one die spec.
type RollEntry struct {
	Sides   int   `json:"sides"`
	Results []int `json:"results"`
	Total   int   `json:"total"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	Rolls []RollEntry `json:"rolls" jsonschema:"per-spec results in request order"`
	Total int         `json:"total" jsonschema:"sum of every die rolled"`
}

// RollDiceTool defines the MCP tool schema for rolling dice.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls arbitrary dice outside any session journal. Same seed and dice always produce the same result.",
	}
}

// RollDiceHandler executes a dice roll request.
func RollDiceHandler() mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		specs := make([]dice.Spec, 0, len(input.Dice))
		for _, spec := range input.Dice {
			specs = append(specs, dice.Spec{Sides: spec.Sides, Count: spec.Count})
		}
		result, err := dice.RollDice(dice.Request{Dice: specs, Seed: input.Seed})
		if err != nil {
			return nil, RollDiceResult{}, toolError("dice roll", err)
		}
		out := RollDiceResult{Total: result.Total, Rolls: make([]RollEntry, 0, len(result.Rolls))}
		for _, roll := range result.Rolls {
			out.Rolls = append(out.Rolls, RollEntry{Sides: roll.Sides, Results: roll.Results, Total: roll.Total})
		}
		return nil, out, nil
	}
}
