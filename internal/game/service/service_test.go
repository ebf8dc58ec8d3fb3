package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/game/skill"
	"github.com/fablestack/engine/internal/game/stream"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/storage/memory"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return New(memory.New(), opts...)
}

func createSession(t *testing.T, ctx context.Context, svc *Service) domain.Session {
	t.Helper()
	session, err := svc.CreateSession(ctx, "test session")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

// rollerOf returns a d20 source producing the given rolls in order.
func rollerOf(t *testing.T, rolls ...int) func() int {
	t.Helper()
	i := 0
	return func() int {
		if i >= len(rolls) {
			t.Fatalf("roller exhausted after %d rolls", len(rolls))
		}
		roll := rolls[i]
		i++
		return roll
	}
}

func testRoster() []domain.Combatant {
	return []domain.Combatant{
		{
			ID: "hero", DisplayName: "Hero", Side: domain.SidePlayer,
			CurrentHP: 20, MaxHP: 20, ArmorClass: 12, AttackBonus: 2,
			StrengthMod: 3, DexterityMod: 2, WisdomMod: 2,
		},
		{
			ID: "goblin", DisplayName: "Goblin", Side: domain.SideEnemy,
			CurrentHP: 10, MaxHP: 10, ArmorClass: 14,
			DexterityMod: 1,
		},
	}
}

var sword = domain.Weapon{Name: "sword", BaseDamage: 6}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session := createSession(t, ctx, svc)
	if session.ID == "" {
		t.Fatal("expected a generated session id")
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Name != "test session" {
		t.Errorf("Name = %q, want %q", got.Name, "test session")
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}

	if err := svc.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := svc.GetSession(ctx, session.ID); errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("GetSession after delete: code = %v, want %v", errors.GetCode(err), errors.CodeNotFound)
	}
}

func TestDeleteSessionUnknown(t *testing.T) {
	svc := newTestService(t)
	if err := svc.DeleteSession(context.Background(), "nope"); errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeNotFound)
	}
}

func TestBeginCombat(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	state, events, err := svc.BeginCombat(ctx, session.ID, testRoster())
	if err != nil {
		t.Fatalf("BeginCombat: %v", err)
	}
	if want := []string{"hero", "goblin"}; len(state.TurnOrder) != 2 || state.TurnOrder[0] != want[0] || state.TurnOrder[1] != want[1] {
		t.Errorf("TurnOrder = %v, want %v", state.TurnOrder, want)
	}
	if len(events) != 1 || events[0].Kind != event.KindCombatTurn {
		t.Fatalf("events = %v, want one combat-turn event", events)
	}
	if events[0].Seq != 1 {
		t.Errorf("Seq = %d, want 1", events[0].Seq)
	}

	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); errors.GetCode(err) != errors.CodeCombatAlreadyActive {
		t.Errorf("second BeginCombat: code = %v, want %v", errors.GetCode(err), errors.CodeCombatAlreadyActive)
	}

	loaded, err := svc.GetCombatState(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetCombatState: %v", err)
	}
	if !loaded.InProgress() {
		t.Error("expected the loaded encounter to be in progress")
	}
}

func TestBeginCombatUnknownSession(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.BeginCombat(context.Background(), "nope", testRoster()); errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeNotFound)
	}
}

func TestPerformAttackHit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, WithRoller(rollerOf(t, 15)))
	session := createSession(t, ctx, svc)
	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); err != nil {
		t.Fatalf("BeginCombat: %v", err)
	}

	result, state, events, err := svc.PerformAttack(ctx, session.ID, "hero", "goblin", sword)
	if err != nil {
		t.Fatalf("PerformAttack: %v", err)
	}
	if !result.Hit || result.Damage != 9 {
		t.Errorf("result = %+v, want hit for 9 damage", result)
	}
	kinds := []event.Kind{event.KindCombatAttack, event.KindCombatDamage, event.KindCombatTurn}
	if len(events) != len(kinds) {
		t.Fatalf("len(events) = %d, want %d", len(events), len(kinds))
	}
	for i, kind := range kinds {
		if events[i].Kind != kind {
			t.Errorf("events[%d].Kind = %v, want %v", i, events[i].Kind, kind)
		}
		if want := uint64(i + 2); events[i].Seq != want {
			t.Errorf("events[%d].Seq = %d, want %d", i, events[i].Seq, want)
		}
	}
	if state.Combatants["goblin"].CurrentHP != 1 {
		t.Errorf("goblin HP = %d, want 1", state.Combatants["goblin"].CurrentHP)
	}

	// The updated state must be what a fresh load sees.
	loaded, err := svc.GetCombatState(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetCombatState: %v", err)
	}
	if loaded.Combatants["goblin"].CurrentHP != 1 {
		t.Errorf("persisted goblin HP = %d, want 1", loaded.Combatants["goblin"].CurrentHP)
	}
	if loaded.ActiveID() != "goblin" {
		t.Errorf("ActiveID = %q, want goblin", loaded.ActiveID())
	}
}

func TestPerformAttackOutOfTurn(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, WithRoller(rollerOf(t)))
	session := createSession(t, ctx, svc)
	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); err != nil {
		t.Fatalf("BeginCombat: %v", err)
	}

	_, _, _, err := svc.PerformAttack(ctx, session.ID, "goblin", "hero", sword)
	if errors.GetCode(err) != errors.CodeCombatOutOfTurn {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.CodeCombatOutOfTurn)
	}

	history, err := svc.GetHistory(ctx, session.ID, 0, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("len(history) = %d, want only the opening event", len(history))
	}
}

func TestPerformAttackWithoutEncounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	_, _, _, err := svc.PerformAttack(ctx, session.ID, "hero", "goblin", sword)
	if errors.GetCode(err) != errors.CodeCombatNotActive {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeCombatNotActive)
	}
}

func TestCombatVictoryArchivesEncounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, WithRoller(rollerOf(t, 20)))
	session := createSession(t, ctx, svc)
	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); err != nil {
		t.Fatalf("BeginCombat: %v", err)
	}

	// Natural 20 doubles the 9 damage, dropping the 10 HP goblin.
	result, state, _, err := svc.PerformAttack(ctx, session.ID, "hero", "goblin", sword)
	if err != nil {
		t.Fatalf("PerformAttack: %v", err)
	}
	if !result.CriticalHit || !result.TargetDown {
		t.Fatalf("result = %+v, want critical kill", result)
	}
	if state.Phase != domain.PhaseConcluded || state.Outcome != domain.OutcomeVictory {
		t.Fatalf("phase %v outcome %v, want concluded victory", state.Phase, state.Outcome)
	}

	if _, _, _, err := svc.PerformAttack(ctx, session.ID, "hero", "goblin", sword); errors.GetCode(err) != errors.CodeCombatNotActive {
		t.Errorf("attack after conclusion: code = %v, want %v", errors.GetCode(err), errors.CodeCombatNotActive)
	}

	// The archived encounter no longer blocks a new one.
	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); err != nil {
		t.Errorf("BeginCombat after conclusion: %v", err)
	}
}

func TestPerformFlee(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)
	if _, _, err := svc.BeginCombat(ctx, session.ID, testRoster()); err != nil {
		t.Fatalf("BeginCombat: %v", err)
	}

	state, events, err := svc.PerformFlee(ctx, session.ID, "hero")
	if err != nil {
		t.Fatalf("PerformFlee: %v", err)
	}
	if state.Combatants["hero"].Status != domain.StatusFled {
		t.Errorf("hero status = %v, want fled", state.Combatants["hero"].Status)
	}
	// The whole player side left, so the encounter concludes as fled.
	if state.Outcome != domain.OutcomeFled {
		t.Errorf("Outcome = %v, want %v", state.Outcome, domain.OutcomeFled)
	}
	if len(events) != 2 {
		t.Errorf("len(events) = %d, want flee plus conclusion", len(events))
	}
}

func TestPerformSkillCheck(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	req := skill.Request{StatValue: 14, SkillRank: 2, Difficulty: "normal", SkillName: "lockpicking", StatName: "dexterity"}
	result, evt, err := svc.PerformSkillCheck(ctx, session.ID, "hero", req)
	if err != nil {
		t.Fatalf("PerformSkillCheck: %v", err)
	}
	if result.Target != 62 {
		t.Errorf("Target = %d, want 62", result.Target)
	}
	if result.Roll < 1 || result.Roll > 100 {
		t.Errorf("Roll = %d, want 1..100", result.Roll)
	}
	if result.Margin != result.Target-result.Roll {
		t.Errorf("Margin = %d, want %d", result.Margin, result.Target-result.Roll)
	}
	if evt.Kind != event.KindSkillCheck || evt.Seq != 1 {
		t.Errorf("event = kind %v seq %d, want skill-check seq 1", evt.Kind, evt.Seq)
	}

	var payload event.SkillCheckPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.CharacterID != "hero" || payload.SkillName != "lockpicking" || payload.Target != 62 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestPerformSkillCheckValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	req := skill.Request{StatValue: 14, SkillRank: 2, Difficulty: "impossible"}
	if _, _, err := svc.PerformSkillCheck(ctx, session.ID, "hero", req); errors.GetCode(err) != errors.CodeSkillInvalidDifficulty {
		t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.CodeSkillInvalidDifficulty)
	}
	history, err := svc.GetHistory(ctx, session.ID, 0, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0 after rejected check", len(history))
	}
}

func TestApplyInventoryDelta(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	events, err := svc.ApplyInventoryDelta(ctx, session.ID, InventoryDelta{ItemID: "potion", QuantityDelta: 2, CurrencyDelta: 30, Reason: "loot"})
	if err != nil {
		t.Fatalf("ApplyInventoryDelta: %v", err)
	}
	if len(events) != 2 || events[0].Kind != event.KindItemAdded || events[1].Kind != event.KindCurrencyChange {
		t.Fatalf("events = %v, want item-added then currency-change", events)
	}

	items, currency, err := svc.GetInventory(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if items["potion"] != 2 || currency != 30 {
		t.Errorf("inventory = %v / %d, want potion 2 and currency 30", items, currency)
	}

	t.Run("insufficient quantity", func(t *testing.T) {
		_, err := svc.ApplyInventoryDelta(ctx, session.ID, InventoryDelta{ItemID: "potion", QuantityDelta: -3})
		if errors.GetCode(err) != errors.CodeInventoryInsufficient {
			t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.CodeInventoryInsufficient)
		}
	})

	t.Run("insufficient currency rejects whole delta", func(t *testing.T) {
		_, err := svc.ApplyInventoryDelta(ctx, session.ID, InventoryDelta{ItemID: "potion", QuantityDelta: 1, CurrencyDelta: -50})
		if errors.GetCode(err) != errors.CodeCurrencyInsufficient {
			t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.CodeCurrencyInsufficient)
		}
		items, currency, err := svc.GetInventory(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetInventory: %v", err)
		}
		if items["potion"] != 2 || currency != 30 {
			t.Errorf("inventory changed to %v / %d after rejected delta", items, currency)
		}
	})

	t.Run("empty delta", func(t *testing.T) {
		_, err := svc.ApplyInventoryDelta(ctx, session.ID, InventoryDelta{})
		if errors.GetCode(err) != errors.CodeInventoryEmptyItemID {
			t.Fatalf("code = %v, want %v", errors.GetCode(err), errors.CodeInventoryEmptyItemID)
		}
	})
}

func TestHistoryAndRestore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	req := skill.Request{StatValue: 14, SkillRank: 2, Difficulty: "normal"}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.PerformSkillCheck(ctx, session.ID, "hero", req); err != nil {
			t.Fatalf("PerformSkillCheck %d: %v", i, err)
		}
	}

	history, err := svc.GetHistory(ctx, session.ID, 0, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}

	// fromSeq is an exclusive lower bound: events after it, not from it.
	after, err := svc.GetHistory(ctx, session.ID, 1, 0)
	if err != nil {
		t.Fatalf("GetHistory after seq 1: %v", err)
	}
	if len(after) != 2 || after[0].Seq != 2 || after[1].Seq != 3 {
		t.Errorf("GetHistory(1,0) seqs = %v, want [2 3]", after)
	}

	tail, err := svc.RestoreHistory(ctx, session.ID, 1)
	if err != nil {
		t.Fatalf("RestoreHistory: %v", err)
	}
	if tail != 1 {
		t.Errorf("tail = %d, want 1", tail)
	}

	// Sequence numbers are never reused after a rollback.
	_, evt, err := svc.PerformSkillCheck(ctx, session.ID, "hero", req)
	if err != nil {
		t.Fatalf("PerformSkillCheck after restore: %v", err)
	}
	if evt.Seq != 4 {
		t.Errorf("Seq = %d, want 4", evt.Seq)
	}
}

// scriptedNarrator emits its tokens in order, optionally signalling
// when it first starts and blocking until released.
type scriptedNarrator struct {
	tokens    []string
	err       error
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func (n *scriptedNarrator) Narrate(ctx context.Context, sessionID, playerInput string, mechanics []event.Event, emit func(ctx context.Context, token string) error) error {
	if n.started != nil {
		n.startOnce.Do(func() { close(n.started) })
	}
	if n.release != nil {
		select {
		case <-n.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, token := range n.tokens {
		if err := emit(ctx, token); err != nil {
			return err
		}
	}
	return n.err
}

type resolverFunc func(ctx context.Context, sessionID, playerInput string) ([]event.Event, error)

func (f resolverFunc) ResolveIntent(ctx context.Context, sessionID, playerInput string) ([]event.Event, error) {
	return f(ctx, sessionID, playerInput)
}

func drainFrames(t *testing.T, frames <-chan stream.Frame) []stream.Frame {
	t.Helper()
	var out []stream.Frame
	timeout := time.After(5 * time.Second)
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return out
			}
			out = append(out, frame)
		case <-timeout:
			t.Fatalf("timed out draining frames, got %d so far", len(out))
		}
	}
}

func TestStreamTurn(t *testing.T) {
	ctx := context.Background()
	narrator := &scriptedNarrator{tokens: []string{"Hello <<SPE", "AKER:Mara>> there"}}
	svc := newTestService(t, WithNarrator(narrator))
	session := createSession(t, ctx, svc)

	frames, err := svc.StreamTurn(ctx, session.ID, "look around")
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}
	got := drainFrames(t, frames)

	if len(got) < 3 {
		t.Fatalf("got %d frames, want at least input event, tokens and end-of-turn", len(got))
	}
	if got[0].Type != stream.FrameTypeEvent || got[0].Event.Kind != event.KindUserInput {
		t.Fatalf("first frame = %+v, want the user-input event", got[0])
	}
	if last := got[len(got)-1]; last.Type != stream.FrameTypeEndOfTurn {
		t.Fatalf("last frame = %+v, want end-of-turn", last)
	}

	var narration string
	var chunk *event.Event
	for _, frame := range got[1 : len(got)-1] {
		switch frame.Type {
		case stream.FrameTypeToken:
			narration += frame.Token
		case stream.FrameTypeEvent:
			if frame.Event.Kind == event.KindNarrativeChunk {
				chunk = frame.Event
			}
		default:
			t.Fatalf("unexpected frame %+v", frame)
		}
	}
	if narration != "Hello  there" {
		t.Errorf("narration = %q, want %q", narration, "Hello  there")
	}
	if chunk == nil {
		t.Fatal("expected a narrative-chunk event frame")
	}
	var payload event.NarrativeChunkPayload
	if err := json.Unmarshal(chunk.PayloadJSON, &payload); err != nil {
		t.Fatalf("decode narration payload: %v", err)
	}
	if payload.Text != "Hello  there" || payload.Speaker != "Mara" {
		t.Errorf("payload = %+v, want filtered text spoken by Mara", payload)
	}

	points, err := svc.GetRestorePoints(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetRestorePoints: %v", err)
	}
	if len(points) != 1 || points[0].Seq != 1 || points[0].Preview != "look around" {
		t.Errorf("points = %+v, want one at seq 1", points)
	}
}

func TestStreamTurnRejectsConcurrentTurn(t *testing.T) {
	ctx := context.Background()
	narrator := &scriptedNarrator{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(t, WithNarrator(narrator))
	session := createSession(t, ctx, svc)

	frames, err := svc.StreamTurn(ctx, session.ID, "first")
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}
	<-narrator.started

	if _, err := svc.StreamTurn(ctx, session.ID, "second"); errors.GetCode(err) != errors.CodeTurnInFlight {
		t.Errorf("concurrent turn: code = %v, want %v", errors.GetCode(err), errors.CodeTurnInFlight)
	}
	if _, err := svc.RestoreHistory(ctx, session.ID, 1); errors.GetCode(err) != errors.CodeRollbackDuringTurn {
		t.Errorf("rollback during turn: code = %v, want %v", errors.GetCode(err), errors.CodeRollbackDuringTurn)
	}

	close(narrator.release)
	drainFrames(t, frames)

	// The session frees up once the turn finishes.
	frames, err = svc.StreamTurn(ctx, session.ID, "third")
	if err != nil {
		t.Fatalf("StreamTurn after release: %v", err)
	}
	drainFrames(t, frames)
}

func TestStreamTurnNarrationUnavailable(t *testing.T) {
	ctx := context.Background()
	narrator := &scriptedNarrator{err: stderrors.New("model offline")}
	req := skill.Request{StatValue: 14, SkillRank: 2, Difficulty: "normal"}

	svc := newTestService(t, WithNarrator(narrator))
	// The resolver calls back into the service, so it is attached after
	// construction.
	svc.resolver = resolverFunc(func(ctx context.Context, sessionID, playerInput string) ([]event.Event, error) {
		_, evt, err := svc.PerformSkillCheck(ctx, sessionID, "hero", req)
		if err != nil {
			return nil, err
		}
		return []event.Event{evt}, nil
	})
	session := createSession(t, ctx, svc)

	frames, err := svc.StreamTurn(ctx, session.ID, "pick the lock")
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}
	got := drainFrames(t, frames)

	var kinds []event.Kind
	var errorCode errors.Code
	for _, frame := range got {
		switch frame.Type {
		case stream.FrameTypeEvent:
			kinds = append(kinds, frame.Event.Kind)
		case stream.FrameTypeError:
			errorCode = frame.Code
		}
	}
	want := []event.Kind{event.KindUserInput, event.KindSkillCheck, event.KindSystemLog}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if errorCode != errors.CodeNarrationUnavailable {
		t.Errorf("error frame code = %v, want %v", errorCode, errors.CodeNarrationUnavailable)
	}

	// The mechanics stay committed even though narration failed.
	history, err := svc.GetHistory(ctx, session.ID, 0, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("len(history) = %d, want input, check and log", len(history))
	}
}

func TestStreamTurnEmptyInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session := createSession(t, ctx, svc)

	if _, err := svc.StreamTurn(ctx, session.ID, "  "); errors.GetCode(err) != errors.CodeTurnEmptyInput {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.CodeTurnEmptyInput)
	}
}
