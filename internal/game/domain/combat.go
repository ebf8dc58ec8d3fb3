package domain

// Phase tracks where a combat encounter is in its life cycle.
type Phase string

const (
	// PhaseNotStarted means no encounter has begun.
	PhaseNotStarted Phase = "not_started"
	// PhaseRollingInitiative means turn order is being computed.
	PhaseRollingInitiative Phase = "rolling_initiative"
	// PhaseAwaitingAction means the active combatant may act.
	PhaseAwaitingAction Phase = "awaiting_action"
	// PhaseResolvingAction means an action is being resolved.
	PhaseResolvingAction Phase = "resolving_action"
	// PhaseRoundAdvance means the turn order wrapped and a new round begins.
	PhaseRoundAdvance Phase = "round_advance"
	// PhaseConcluded means the encounter ended; the state is archived.
	PhaseConcluded Phase = "concluded"
)

// Outcome records how a concluded encounter ended, from the player's
// point of view.
type Outcome string

const (
	// OutcomeVictory means no enemy combatant remains alive.
	OutcomeVictory Outcome = "victory"
	// OutcomeDefeat means no player-side combatant remains alive.
	OutcomeDefeat Outcome = "defeat"
	// OutcomeFled means the player side left the encounter voluntarily.
	OutcomeFled Outcome = "fled"
)

// CombatState is the full state of one combat encounter. A session owns
// at most one active CombatState; concluded states are archived for
// post-mortem review, never deleted.
type CombatState struct {
	SessionID   string
	RoundNumber int
	// TurnOrder is the fixed descending initiative order of combatant ids.
	TurnOrder []string
	// ActiveIndex points into TurnOrder at the combatant whose turn it is.
	ActiveIndex int
	Combatants  map[string]*Combatant
	Phase       Phase
	// Outcome is set only once Phase is concluded.
	Outcome Outcome
}

// ActiveID returns the id of the combatant whose turn it is, or empty
// when the encounter is not in progress.
func (s *CombatState) ActiveID() string {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.TurnOrder) {
		return ""
	}
	return s.TurnOrder[s.ActiveIndex]
}

// Active returns the combatant whose turn it is, or nil.
func (s *CombatState) Active() *Combatant {
	return s.Combatants[s.ActiveID()]
}

// SideAlive reports whether the given side has at least one alive member.
func (s *CombatState) SideAlive(side Side) bool {
	for _, c := range s.Combatants {
		if c.Status == StatusAlive && c.Side == side {
			return true
		}
	}
	return false
}

// HostilesAlive reports whether any combatant hostile to the given side
// is still alive.
func (s *CombatState) HostilesAlive(side Side) bool {
	for _, c := range s.Combatants {
		if c.Status == StatusAlive && c.Side.Opposes(side) {
			return true
		}
	}
	return false
}

// PlayerSideAlive reports whether the player or any ally is still alive.
func (s *CombatState) PlayerSideAlive() bool {
	for _, c := range s.Combatants {
		if c.Status == StatusAlive && !c.Side.Opposes(SidePlayer) {
			return true
		}
	}
	return false
}

// InProgress reports whether the encounter accepts actions.
func (s *CombatState) InProgress() bool {
	switch s.Phase {
	case PhaseAwaitingAction, PhaseResolvingAction, PhaseRoundAdvance:
		return true
	}
	return false
}
