package service

import (
	"context"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/platform/errors"
)

// InventoryDelta describes one inventory mutation. A zero QuantityDelta
// with a zero CurrencyDelta is rejected as an empty mutation.
type InventoryDelta struct {
	ItemID        string
	QuantityDelta int
	CurrencyDelta int
	Reason        string
}

// ApplyInventoryDelta validates the delta against the current derived
// inventory and commits the resulting events. All checks pass before
// any event is written, so a rejected delta leaves the timeline
// untouched.
func (s *Service) ApplyInventoryDelta(ctx context.Context, sessionID string, delta InventoryDelta) ([]event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.ApplyInventoryDelta")
	defer span.End()

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if delta.QuantityDelta == 0 && delta.CurrencyDelta == 0 {
		return nil, errors.New(errors.CodeInventoryEmptyItemID, "inventory delta is empty")
	}
	if delta.QuantityDelta != 0 && delta.ItemID == "" {
		return nil, errors.New(errors.CodeInventoryEmptyItemID, "item id is required for a quantity delta")
	}

	inv, err := s.timeline.Inventory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var events []event.Event
	if delta.QuantityDelta != 0 {
		total, err := inv.ApplyItemDelta(delta.ItemID, delta.QuantityDelta)
		if err != nil {
			return nil, mapInventoryErr(err)
		}
		kind := event.KindItemAdded
		if delta.QuantityDelta < 0 {
			kind = event.KindItemRemoved
		}
		quantity := delta.QuantityDelta
		if quantity < 0 {
			quantity = -quantity
		}
		evt, err := event.New(sessionID, kind, itemPayload(kind, delta.ItemID, quantity, total))
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if delta.CurrencyDelta != 0 {
		balance, err := inv.ApplyCurrencyDelta(delta.CurrencyDelta)
		if err != nil {
			return nil, mapInventoryErr(err)
		}
		evt, err := event.New(sessionID, event.KindCurrencyChange, event.CurrencyChangePayload{
			Delta:   delta.CurrencyDelta,
			Balance: balance,
			Reason:  delta.Reason,
		})
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return s.appendAll(ctx, events)
}

func itemPayload(kind event.Kind, itemID string, quantity, total int) any {
	if kind == event.KindItemRemoved {
		return event.ItemRemovedPayload{ItemID: itemID, Quantity: quantity, Total: total}
	}
	return event.ItemAddedPayload{ItemID: itemID, Quantity: quantity, Total: total}
}

func mapInventoryErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientItems):
		return errors.Wrap(errors.CodeInventoryInsufficient, "resulting quantity would be negative", err)
	case errors.Is(err, domain.ErrInsufficientCurrency):
		return errors.Wrap(errors.CodeCurrencyInsufficient, "resulting balance would be negative", err)
	case errors.Is(err, domain.ErrInvalidItemID):
		return errors.Wrap(errors.CodeInventoryEmptyItemID, "item id is required", err)
	default:
		return err
	}
}
