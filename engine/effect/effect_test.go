package effect

import (
	"testing"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/faction"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

func newTestApplier() (*Applier, *state.GameState, *events.Bus) {
	defs := &state.Defs{
		Game: types.GameDef{Start: "village"},
		Factions: types.FactionConfig{
			Factions: []types.FactionDef{
				{ID: "ironpact"},
				{ID: "veil", Relations: map[string]int{"ironpact": -50}},
			},
		},
	}
	gs := state.New(defs)
	bus := events.New()
	factions := faction.NewSystem(gs, defs, bus, zap.NewNop())
	return NewApplier(gs, factions, bus, zap.NewNop()), gs, bus
}

func collect(bus *events.Bus, kind events.Kind) *[]events.Event {
	var got []events.Event
	bus.Subscribe(kind, func(e events.Event) { got = append(got, e) })
	return &got
}

func TestApply_FactionRepRoutesThroughFactionSystem(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectFactionRep, Faction: "ironpact", Amount: 20})

	if got := gs.FactionRep("ironpact"); got != 20 {
		t.Errorf("expected ironpact 20, got %d", got)
	}
	// Spillover ran: floor(20 * 0.15 * 50/50) = 3.
	if got := gs.FactionRep("veil"); got != -3 {
		t.Errorf("expected veil -3 from spillover, got %d", got)
	}
}

func TestApply_Personality(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectPersonality, Trait: "warm", Amount: 2})
	a.Apply(types.Effect{Kind: types.EffectPersonality, Trait: "warm", Amount: 1})

	if got := gs.Trait("warm"); got != 3 {
		t.Errorf("expected warm 3, got %d", got)
	}
}

func TestApply_ObjectiveEmitsTargetedEvent(t *testing.T) {
	a, _, bus := newTestApplier()
	triggered := collect(bus, events.KindObjectiveTriggered)
	applied := collect(bus, events.KindEffectApplied)

	a.Apply(types.Effect{Kind: types.EffectObjective, Quest: "q2", Objective: "talk_elder"})

	if len(*triggered) != 1 {
		t.Fatalf("expected 1 objectiveTriggered, got %d", len(*triggered))
	}
	ev := (*triggered)[0].(events.ObjectiveTriggered)
	if ev.Quest != "q2" || ev.Objective != "talk_elder" {
		t.Errorf("unexpected event %+v", ev)
	}
	if len(*applied) != 1 {
		t.Errorf("expected generic notification too, got %d", len(*applied))
	}
}

func TestApply_AddItemDefaultsToOne(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectAddItem, Item: "potion"})
	a.Apply(types.Effect{Kind: types.EffectAddItem, Item: "potion", Amount: 2})

	if got := gs.ItemCount("potion"); got != 3 {
		t.Errorf("expected 3 potions, got %d", got)
	}
}

func TestApply_RemoveItem(t *testing.T) {
	a, gs, _ := newTestApplier()
	gs.AddItem("key", 2)

	a.Apply(types.Effect{Kind: types.EffectRemoveItem, Item: "key"})

	if got := gs.ItemCount("key"); got != 1 {
		t.Errorf("expected 1 key left, got %d", got)
	}
}

func TestApply_RemoveItemInsufficientIsNoOp(t *testing.T) {
	a, gs, bus := newTestApplier()
	applied := collect(bus, events.KindEffectApplied)

	a.Apply(types.Effect{Kind: types.EffectRemoveItem, Item: "key", Amount: 5})

	if got := gs.ItemCount("key"); got != 0 {
		t.Errorf("expected no mutation, got %d keys", got)
	}
	if len(*applied) != 0 {
		t.Errorf("expected no notification for a failed effect, got %d", len(*applied))
	}
}

func TestApply_GoldCredit(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectGold, Amount: 50})

	if got := gs.Gold(); got != 50 {
		t.Errorf("expected 50 gold, got %d", got)
	}
}

func TestApply_GoldDebit(t *testing.T) {
	a, gs, _ := newTestApplier()
	gs.AddGold(30)

	a.Apply(types.Effect{Kind: types.EffectGold, Amount: -10})

	if got := gs.Gold(); got != 20 {
		t.Errorf("expected 20 gold, got %d", got)
	}
}

func TestApply_GoldDebitInsufficientIsNoOp(t *testing.T) {
	a, gs, bus := newTestApplier()
	gs.AddGold(5)
	applied := collect(bus, events.KindEffectApplied)

	a.Apply(types.Effect{Kind: types.EffectGold, Amount: -10})

	if got := gs.Gold(); got != 5 {
		t.Errorf("expected gold untouched, got %d", got)
	}
	if len(*applied) != 0 {
		t.Errorf("expected no notification, got %d", len(*applied))
	}
}

func TestApply_StartMinigame(t *testing.T) {
	a, _, bus := newTestApplier()
	started := collect(bus, events.KindMinigameStarted)

	a.Apply(types.Effect{Kind: types.EffectStartMinigame, Minigame: "lockpick"})

	if len(*started) != 1 {
		t.Fatalf("expected 1 minigameStarted, got %d", len(*started))
	}
	if ev := (*started)[0].(events.MinigameStarted); ev.Minigame != "lockpick" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestApply_FlagNormalizesNumbers(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectFlag, Key: "chapter", Value: 2})

	if v, _ := gs.Flag("chapter"); v != float64(2) {
		t.Errorf("expected float64(2), got %T %v", v, v)
	}
}

func TestApply_MoralityClamps(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.Apply(types.Effect{Kind: types.EffectMorality, Amount: 90})

	if got := gs.Morality(); got != 100 {
		t.Errorf("expected morality clamped at 100, got %d", got)
	}
}

func TestApply_UnknownKindIsNoOp(t *testing.T) {
	a, _, bus := newTestApplier()
	applied := collect(bus, events.KindEffectApplied)

	a.Apply(types.Effect{Kind: "teleport", Key: "somewhere"})

	if len(*applied) != 0 {
		t.Errorf("expected no notification for unknown kind, got %d", len(*applied))
	}
}

func TestApplyAll_AppliesInOrder(t *testing.T) {
	a, gs, _ := newTestApplier()

	a.ApplyAll([]types.Effect{
		{Kind: types.EffectGold, Amount: 10},
		{Kind: types.EffectGold, Amount: -10},
	})

	// The debit succeeds only because the credit ran first.
	if got := gs.Gold(); got != 0 {
		t.Errorf("expected 0 gold after credit then debit, got %d", got)
	}
}
