package event

// UserInputPayload captures the payload for user-input events.
type UserInputPayload struct {
	Text string `json:"text"`
}

// SystemLogPayload captures the payload for system-log events.
type SystemLogPayload struct {
	Message string `json:"message"`
	Level   string `json:"level,omitempty"`
}

// NarrativeChunkPayload captures the payload for narrative-chunk events.
type NarrativeChunkPayload struct {
	Text string `json:"text"`
	// Speaker carries the speaking character's name when known.
	Speaker string `json:"speaker,omitempty"`
}

// ChoiceOfferedPayload captures the payload for choice-offered events.
type ChoiceOfferedPayload struct {
	Prompt  string   `json:"prompt,omitempty"`
	Choices []string `json:"choices"`
}

// SkillCheckPayload captures the payload for skill-check events.
type SkillCheckPayload struct {
	CharacterID string `json:"character_id"`
	SkillName   string `json:"skill_name"`
	StatName    string `json:"stat_name"`
	Difficulty  string `json:"difficulty"`
	Target      int    `json:"target"`
	Roll        int    `json:"roll"`
	Success     bool   `json:"success"`
	Margin      int    `json:"margin"`
}

// CombatAttackPayload captures the payload for combat-attack events.
type CombatAttackPayload struct {
	AttackerID   string `json:"attacker_id"`
	DefenderID   string `json:"defender_id"`
	WeaponName   string `json:"weapon_name"`
	AttackRoll   int    `json:"attack_roll"`
	AttackBonus  int    `json:"attack_bonus"`
	AttackTotal  int    `json:"attack_total"`
	DefenderAC   int    `json:"defender_ac"`
	Hit          bool   `json:"hit"`
	CriticalHit  bool   `json:"critical_hit"`
	CriticalMiss bool   `json:"critical_miss"`
}

// CombatDamagePayload captures the payload for combat-damage events.
type CombatDamagePayload struct {
	AttackerID string `json:"attacker_id,omitempty"`
	TargetID   string `json:"target_id"`
	Amount     int    `json:"amount"`
	HPBefore   int    `json:"hp_before"`
	HPAfter    int    `json:"hp_after"`
	Down       bool   `json:"down,omitempty"`
}

// CombatTurnPayload captures the payload for combat-turn events.
type CombatTurnPayload struct {
	// Transition is one of "combat-started", "turn-advanced", "round-advanced",
	// "combatant-fled" or "combat-concluded".
	Transition    string   `json:"transition"`
	RoundNumber   int      `json:"round_number"`
	ActiveID      string   `json:"active_id,omitempty"`
	TurnOrder     []string `json:"turn_order,omitempty"`
	CombatantID   string   `json:"combatant_id,omitempty"`
	Outcome       string   `json:"outcome,omitempty"`
	WinningSide   string   `json:"winning_side,omitempty"`
	SkippedDownID string   `json:"skipped_down_id,omitempty"`
}

// ItemAddedPayload captures the payload for item-added events.
type ItemAddedPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Total    int    `json:"total"`
}

// ItemRemovedPayload captures the payload for item-removed events.
type ItemRemovedPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Total    int    `json:"total"`
}

// CurrencyChangePayload captures the payload for currency-change events.
type CurrencyChangePayload struct {
	Delta   int    `json:"delta"`
	Balance int    `json:"balance"`
	Reason  string `json:"reason,omitempty"`
}
