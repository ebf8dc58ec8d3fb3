package domain

import (
	"errors"
	"testing"
)

func TestInitiative(t *testing.T) {
	tests := []struct {
		name    string
		dexMod  int
		wisMod  int
		want    int
	}{
		{"both positive", 3, 2, 4},
		{"odd wisdom rounds down", 3, 3, 4},
		{"zero modifiers", 0, 0, 0},
		{"negative wisdom rounds toward negative", 2, -3, 0},
		{"negative dexterity", -1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initiative(tt.dexMod, tt.wisMod); got != tt.want {
				t.Errorf("Initiative(%d, %d) = %d, want %d", tt.dexMod, tt.wisMod, got, tt.want)
			}
		})
	}
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	c := Combatant{ID: "goblin", CurrentHP: 5, MaxHP: 10, Status: StatusAlive}

	before, after := c.ApplyDamage(9)
	if before != 5 || after != 0 {
		t.Errorf("ApplyDamage(9) = (%d, %d), want (5, 0)", before, after)
	}
	if c.CurrentHP != 0 {
		t.Errorf("CurrentHP = %d, want 0", c.CurrentHP)
	}
	if c.Status != StatusDown {
		t.Errorf("Status = %q, want %q", c.Status, StatusDown)
	}
}

func TestApplyDamageLeavesAliveAboveZero(t *testing.T) {
	c := Combatant{ID: "goblin", CurrentHP: 10, MaxHP: 10, Status: StatusAlive}

	if _, after := c.ApplyDamage(4); after != 6 {
		t.Fatalf("after = %d, want 6", after)
	}
	if c.Status != StatusAlive {
		t.Errorf("Status = %q, want %q", c.Status, StatusAlive)
	}
}

func TestAttackAbilityMod(t *testing.T) {
	c := Combatant{StrengthMod: 3, DexterityMod: 1}

	if got := c.AttackAbilityMod(false); got != 3 {
		t.Errorf("melee ability mod = %d, want 3", got)
	}
	if got := c.AttackAbilityMod(true); got != 1 {
		t.Errorf("ranged ability mod = %d, want 1", got)
	}
}

func TestSideOpposes(t *testing.T) {
	tests := []struct {
		a, b Side
		want bool
	}{
		{SidePlayer, SideEnemy, true},
		{SideAlly, SideEnemy, true},
		{SideEnemy, SidePlayer, true},
		{SidePlayer, SideAlly, false},
		{SideEnemy, SideEnemy, false},
	}

	for _, tt := range tests {
		if got := tt.a.Opposes(tt.b); got != tt.want {
			t.Errorf("%s.Opposes(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidateCombatant(t *testing.T) {
	valid := Combatant{ID: "hero", Side: SidePlayer, CurrentHP: 10, MaxHP: 10}

	tests := []struct {
		name    string
		mutate  func(*Combatant)
		wantErr error
	}{
		{"valid", func(*Combatant) {}, nil},
		{"empty id", func(c *Combatant) { c.ID = " " }, ErrInvalidCombatantID},
		{"unknown side", func(c *Combatant) { c.Side = "neutral" }, ErrInvalidSide},
		{"zero max hp", func(c *Combatant) { c.MaxHP = 0 }, ErrInvalidHP},
		{"hp above max", func(c *Combatant) { c.CurrentHP = 11 }, ErrInvalidHP},
		{"negative hp", func(c *Combatant) { c.CurrentHP = -1 }, ErrInvalidHP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateCombatant(c)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCombatant() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
