package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItemID indicates an inventory mutation with no item id.
	ErrInvalidItemID = errors.New("item id must not be empty")
	// ErrInsufficientItems indicates a removal exceeding the held quantity.
	ErrInsufficientItems = errors.New("insufficient item quantity")
	// ErrInsufficientCurrency indicates a spend exceeding the balance.
	ErrInsufficientCurrency = errors.New("insufficient currency")
)

// Inventory tracks a session's item quantities and currency balance.
// Quantities and the balance never go negative.
type Inventory struct {
	Items    map[string]int
	Currency int
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{Items: make(map[string]int)}
}

// Quantity returns how many of the item the inventory holds.
func (inv *Inventory) Quantity(itemID string) int {
	return inv.Items[itemID]
}

// ApplyItemDelta adjusts an item's quantity and returns the new total.
// A delta that would drive the quantity negative is rejected without
// mutating the inventory.
func (inv *Inventory) ApplyItemDelta(itemID string, delta int) (int, error) {
	if itemID == "" {
		return 0, ErrInvalidItemID
	}
	total := inv.Items[itemID] + delta
	if total < 0 {
		return 0, fmt.Errorf("%w: have %d, removing %d", ErrInsufficientItems, inv.Items[itemID], -delta)
	}
	if total == 0 {
		delete(inv.Items, itemID)
	} else {
		inv.Items[itemID] = total
	}
	return total, nil
}

// ApplyCurrencyDelta adjusts the currency balance and returns the new
// balance. A delta that would drive the balance negative is rejected
// without mutating the inventory.
func (inv *Inventory) ApplyCurrencyDelta(delta int) (int, error) {
	balance := inv.Currency + delta
	if balance < 0 {
		return 0, fmt.Errorf("%w: have %d, spending %d", ErrInsufficientCurrency, inv.Currency, -delta)
	}
	inv.Currency = balance
	return balance, nil
}
