package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fablestack/engine/internal/game/service"
)

// InventoryDeltaInput represents the MCP tool input for inventory changes.
type InventoryDeltaInput struct {
	SessionID     string `json:"session_id" jsonschema:"session identifier"`
	ItemID        string `json:"item_id,omitempty" jsonschema:"item identifier, required for a quantity delta"`
	QuantityDelta int    `json:"quantity_delta,omitempty" jsonschema:"signed item quantity change"`
	CurrencyDelta int    `json:"currency_delta,omitempty" jsonschema:"signed currency change"`
	Reason        string `json:"reason,omitempty" jsonschema:"optional reason recorded on currency changes"`
}

// InventoryDeltaResult represents the MCP tool output for inventory changes.
type InventoryDeltaResult struct {
	Events []EventEntry `json:"events" jsonschema:"committed events, one per applied change"`
}

// InventoryGetInput represents the MCP tool input for reading inventory.
type InventoryGetInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// InventoryGetResult represents the MCP tool output for reading inventory.
type InventoryGetResult struct {
	Items    map[string]int `json:"items" jsonschema:"item quantities by item id"`
	Currency int            `json:"currency" jsonschema:"currency balance"`
}

// InventoryDeltaTool defines the MCP tool schema for inventory changes.
func InventoryDeltaTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "inventory_delta",
		Description: "Applies an item quantity and/or currency change. Deltas producing a negative quantity or balance are rejected without committing anything.",
	}
}

// InventoryGetTool defines the MCP tool schema for reading inventory.
func InventoryGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "inventory_get",
		Description: "Returns the inventory derived by replaying the session's journal.",
	}
}

// InventoryDeltaHandler executes an inventory delta request.
func InventoryDeltaHandler(svc *service.Service) mcp.ToolHandlerFor[InventoryDeltaInput, InventoryDeltaResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InventoryDeltaInput) (*mcp.CallToolResult, InventoryDeltaResult, error) {
		events, err := svc.ApplyInventoryDelta(ctx, input.SessionID, service.InventoryDelta{
			ItemID:        input.ItemID,
			QuantityDelta: input.QuantityDelta,
			CurrencyDelta: input.CurrencyDelta,
			Reason:        input.Reason,
		})
		if err != nil {
			return nil, InventoryDeltaResult{}, toolError("inventory delta", err)
		}
		return nil, InventoryDeltaResult{Events: eventEntries(events)}, nil
	}
}

// InventoryGetHandler executes an inventory read request.
func InventoryGetHandler(svc *service.Service) mcp.ToolHandlerFor[InventoryGetInput, InventoryGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InventoryGetInput) (*mcp.CallToolResult, InventoryGetResult, error) {
		items, currency, err := svc.GetInventory(ctx, input.SessionID)
		if err != nil {
			return nil, InventoryGetResult{}, toolError("inventory read", err)
		}
		return nil, InventoryGetResult{Items: items, Currency: currency}, nil
	}
}
