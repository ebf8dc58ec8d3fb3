package domain

import (
	"errors"
	"strings"
)

// ErrInvalidWeapon indicates a weapon with no name or negative damage.
var ErrInvalidWeapon = errors.New("weapon must have a name and non-negative base damage")

// Weapon describes the weapon used for a single attack. Ranged weapons
// attack with dexterity and do not add strength to damage.
type Weapon struct {
	Name       string
	BaseDamage int
	Ranged     bool
}

// ValidateWeapon validates a weapon before attack resolution.
func ValidateWeapon(w Weapon) error {
	if strings.TrimSpace(w.Name) == "" || w.BaseDamage < 0 {
		return ErrInvalidWeapon
	}
	return nil
}
