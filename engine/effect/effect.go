// Package effect centralizes state mutation for the effect vocabulary
// shared by dialogue choices, dialogue lines, and quest content. Every
// kind is one atomic operation routed through a GameState or faction
// mutator.
package effect

import (
	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/faction"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

// Applier routes effects into the game state and announces them.
type Applier struct {
	state    *state.GameState
	factions *faction.System
	bus      *events.Bus
	log      *zap.Logger
}

// NewApplier creates an applier over the given state and collaborators.
func NewApplier(gs *state.GameState, factions *faction.System, bus *events.Bus, log *zap.Logger) *Applier {
	return &Applier{state: gs, factions: factions, bus: bus, log: log}
}

// ApplyAll applies a list of effects in order.
func (a *Applier) ApplyAll(effs []types.Effect) {
	for _, eff := range effs {
		a.Apply(eff)
	}
}

// Apply applies one effect. Applied effects broadcast a generic
// notification; the objective and startMinigame kinds additionally
// publish their targeted events so the quest system and the engine can
// react without knowing where the effect came from. Unknown kinds and
// effects the player cannot afford log a warning and do nothing.
func (a *Applier) Apply(eff types.Effect) {
	switch eff.Kind {
	case types.EffectFactionRep:
		a.factions.AddReputation(eff.Faction, eff.Amount)

	case types.EffectPersonality:
		a.state.AdjustTrait(eff.Trait, eff.Amount)

	case types.EffectObjective:
		// No direct mutation: the quest system owns the ledger and
		// reacts to the targeted event below.

	case types.EffectAddItem:
		a.state.AddItem(eff.Item, countOr1(eff.Amount))

	case types.EffectRemoveItem:
		if !a.state.RemoveItem(eff.Item, countOr1(eff.Amount)) {
			a.log.Warn("effect tried to remove an item the player lacks",
				zap.String("item", eff.Item),
				zap.Int("count", countOr1(eff.Amount)))
			return
		}

	case types.EffectGold:
		if eff.Amount >= 0 {
			a.state.AddGold(eff.Amount)
		} else if !a.state.SpendGold(-eff.Amount) {
			a.log.Warn("effect tried to spend gold the player lacks",
				zap.Int("amount", -eff.Amount),
				zap.Int("balance", a.state.Gold()))
			return
		}

	case types.EffectStartMinigame:
		// Handled by the targeted event below.

	case types.EffectFlag:
		a.state.SetFlag(eff.Key, eff.Value)

	case types.EffectMorality:
		a.state.AdjustMorality(eff.Amount)

	default:
		a.log.Warn("unknown effect kind, skipping", zap.String("kind", string(eff.Kind)))
		return
	}

	a.bus.Publish(events.EffectApplied{Effect: eff})

	switch eff.Kind {
	case types.EffectObjective:
		a.bus.Publish(events.ObjectiveTriggered{Quest: eff.Quest, Objective: eff.Objective})
	case types.EffectStartMinigame:
		a.bus.Publish(events.MinigameStarted{Minigame: eff.Minigame})
	}
}

// countOr1 reads an item count, treating the zero value as 1 so content
// can say {"type":"addItem","item":"potion"}.
func countOr1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
