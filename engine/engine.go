// Package engine assembles the narrative core: the shared GameState, the
// event bus, and the faction, dialogue, quest, and battle systems behind
// one Game facade the front ends drive.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/condition"
	"github.com/mirren/emberfall/engine/dialogue"
	"github.com/mirren/emberfall/engine/effect"
	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/faction"
	"github.com/mirren/emberfall/engine/quest"
	"github.com/mirren/emberfall/engine/save"
	"github.com/mirren/emberfall/engine/state"
)

// Game wires the core systems around one shared GameState for a single
// play session.
type Game struct {
	Defs       *state.Defs
	State      *state.GameState
	Bus        *events.Bus
	RNG        *RNG
	Factions   *faction.System
	Conditions *condition.Evaluator
	Effects    *effect.Applier
	Dialogues  *dialogue.System
	Quests     *quest.System

	log     *zap.Logger
	session string
	battle  *Battle
	pending []string // dialogues queued behind the active session
}

// New builds a session over the loaded definitions. The RNG seeds from
// the clock; RestoreRNG replays a saved stream instead.
func New(defs *state.Defs, log *zap.Logger) *Game {
	gs := state.New(defs)
	bus := events.New()
	session := uuid.NewString()
	log = log.With(zap.String("session", session))

	factions := faction.NewSystem(gs, defs, bus, log)
	conds := condition.NewEvaluator(gs, log)
	apply := effect.NewApplier(gs, factions, bus, log)

	g := &Game{
		Defs:       defs,
		State:      gs,
		Bus:        bus,
		RNG:        NewRNG(time.Now().UnixNano()),
		Factions:   factions,
		Conditions: conds,
		Effects:    apply,
		Dialogues:  dialogue.NewSystem(defs, conds, apply, bus, log),
		Quests:     quest.NewSystem(gs, defs, factions, bus, log),
		log:        log,
		session:    session,
	}
	g.subscribe()
	log.Info("session started",
		zap.String("title", defs.Game.Title),
		zap.String("start", defs.Game.Start))
	return g
}

// subscribe wires dialogue triggering: requests arriving while a session
// runs queue up and start in order as sessions end.
func (g *Game) subscribe() {
	g.Bus.Subscribe(events.KindTriggerDialogue, func(e events.Event) {
		id := e.(events.TriggerDialogue).Dialogue
		if g.Dialogues.Active() {
			g.pending = append(g.pending, id)
			return
		}
		g.Dialogues.Start(id)
	})
	g.Bus.Subscribe(events.KindDialogueEnded, func(events.Event) {
		g.startPending()
	})
}

func (g *Game) startPending() {
	for len(g.pending) > 0 && !g.Dialogues.Active() {
		next := g.pending[0]
		g.pending = g.pending[1:]
		g.Dialogues.Start(next)
	}
}

// Session returns the unique id for this run, used as the default save
// slot suffix.
func (g *Game) Session() string { return g.session }

// TalkTo starts the NPC's dialogue, honoring a state-specific override,
// then feeds talk objectives. The dialogue starts before the talk event
// publishes so that a completion dialogue it triggers queues behind the
// conversation instead of racing it. Returns false for an unknown NPC.
func (g *Game) TalkTo(npcID string) bool {
	npc, ok := g.Defs.NPCs[npcID]
	if !ok {
		g.log.Warn("talk to unknown npc", zap.String("npc", npcID))
		return false
	}
	id := npc.Dialogue
	if st := g.State.NPCState(npcID); st != "" {
		if override, ok := npc.Dialogues[st]; ok {
			id = override
		}
	}
	if id != "" {
		g.Dialogues.Start(id)
	}
	g.Bus.Publish(events.NPCTalked{NPC: npcID})
	return true
}

// EnterArea moves the player and feeds travel objectives. The start area
// is always open; everywhere else must be unlocked first.
func (g *Game) EnterArea(area string) bool {
	if area != g.Defs.Game.Start && !g.State.AreaUnlocked(area) {
		return false
	}
	g.State.SetCurrentArea(area)
	g.Bus.Publish(events.AreaEntered{Area: area})
	return true
}

// Interact feeds interact objectives for a world object.
func (g *Game) Interact(object string) {
	g.Bus.Publish(events.ObjectInteracted{Object: object})
}

// CollectItem places items in the inventory and feeds collect
// objectives. A count below 1 collects one.
func (g *Game) CollectItem(item string, count int) {
	if count < 1 {
		count = 1
	}
	g.State.AddItem(item, count)
	g.Bus.Publish(events.ItemCollected{Item: item, Count: count})
}

// CompleteMinigame reports a successfully finished minigame.
func (g *Game) CompleteMinigame(id string) {
	g.Bus.Publish(events.MinigameCompleted{Minigame: id})
}

// StartBattle begins an encounter with the named enemy instance, looking
// up the definition by exact id first, then by the derived type.
func (g *Game) StartBattle(instance string) (*Battle, error) {
	if g.battle != nil && !g.battle.Done() {
		return nil, fmt.Errorf("already fighting %s", g.battle.Enemy())
	}
	def, ok := g.Defs.Enemies[instance]
	if !ok {
		if t := quest.EnemyType(instance); t != "" {
			def, ok = g.Defs.Enemies[t]
		}
	}
	if !ok {
		return nil, fmt.Errorf("unknown enemy %q", instance)
	}
	g.battle = NewBattle(g.State, def, instance, g.Bus, g.RNG, g.log)
	return g.battle, nil
}

// Battle returns the running encounter, nil when none is.
func (g *Game) Battle() *Battle {
	if g.battle == nil || g.battle.Done() {
		return nil
	}
	return g.battle
}

// GameOver reports whether a defeat has ended the run.
func (g *Game) GameOver() bool {
	v, ok := g.State.Flag("game_over")
	return ok && v == true
}

// Snapshot captures the durable state as a save document.
func (g *Game) Snapshot() *save.Document { return g.State.SaveData() }

// Restore replaces the session state with the snapshot: any running
// dialogue or battle is dropped, then the quest runtime realigns with
// the restored ledger.
func (g *Game) Restore(doc *save.Document) {
	g.Dialogues.ForceClose()
	g.pending = nil
	g.battle = nil
	g.State.LoadSave(doc)
	g.Quests.Rebuild()
	g.log.Info("save restored",
		zap.Int("level", g.State.Level()),
		zap.String("area", g.State.CurrentArea()))
}

// RestoreRNG re-creates the RNG from a seed and advances it to the saved
// position, replaying the original stream.
func (g *Game) RestoreRNG(seed, position int64) {
	g.RNG = RestoreRNG(seed, position)
}
