// Package quest drives quest lifecycles: prerequisite-gated
// availability, activation, event-driven objective tracking, and
// rewards.
package quest

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/faction"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

// Status is a quest's lifecycle stage. Transitions only ever move
// forward: locked → available → active → completed.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Objective types matched by the event pipeline.
const (
	ObjectiveTalk          = "talk"
	ObjectiveKill          = "kill"
	ObjectiveCollect       = "collect"
	ObjectiveTravel        = "travel"
	ObjectiveInteract      = "interact"
	ObjectiveCompleteQuest = "complete_quest"
	ObjectiveMinigame      = "minigame"
)

// objective is the runtime mirror of one objective definition.
type objective struct {
	def       types.ObjectiveDef
	current   int
	completed bool
}

func (o *objective) required() int {
	if o.def.Required <= 0 {
		return 1
	}
	return o.def.Required
}

// quest is the runtime record for one quest.
type quest struct {
	def        types.QuestDef
	status     Status
	objectives []*objective
}

func (q *quest) allObjectivesDone() bool {
	for _, o := range q.objectives {
		if !o.completed {
			return false
		}
	}
	return true
}

// System owns every quest's runtime record and subscribes itself to the
// gameplay events that advance objectives.
type System struct {
	state    *state.GameState
	defs     *state.Defs
	factions *faction.System
	bus      *events.Bus
	log      *zap.Logger

	quests map[string]*quest
	order  []string // declared order, for deterministic matching passes
}

// NewSystem builds runtime records for every quest definition, restores
// the statuses recorded in the game state, subscribes to gameplay
// events, and runs the first availability pass.
func NewSystem(gs *state.GameState, defs *state.Defs, factions *faction.System, bus *events.Bus, log *zap.Logger) *System {
	s := &System{state: gs, defs: defs, factions: factions, bus: bus, log: log}
	s.subscribe()
	s.Rebuild()
	return s
}

// Rebuild re-derives every runtime record from the definitions and the
// game state's quest sets and progress ledger. Call it after loading a
// save into the state.
func (s *System) Rebuild() {
	s.quests = make(map[string]*quest, len(s.defs.Quests))
	s.order = s.order[:0]

	for _, def := range s.defs.Quests {
		q := &quest{def: def, status: StatusLocked}
		for _, od := range def.Objectives {
			q.objectives = append(q.objectives, &objective{def: od})
		}

		switch {
		case s.state.QuestCompleted(def.ID):
			q.status = StatusCompleted
			for _, o := range q.objectives {
				o.current = o.required()
				o.completed = true
			}
		case s.state.QuestActive(def.ID):
			q.status = StatusActive
			for _, o := range q.objectives {
				o.current = s.state.ObjectiveProgress(def.ID, o.def.ID)
				o.completed = o.current >= o.required()
			}
		}

		s.quests[def.ID] = q
		s.order = append(s.order, def.ID)
	}

	s.evaluateAvailability()
}

// Status returns a quest's lifecycle stage.
func (s *System) Status(id string) (Status, bool) {
	q, ok := s.quests[id]
	if !ok {
		return "", false
	}
	return q.status, true
}

// ActivateQuest takes on an available quest: counters reset to zero,
// the ledger is initialized, and the state's active set gains the id.
// Returns false from any other status.
func (s *System) ActivateQuest(id string) bool {
	q, ok := s.quests[id]
	if !ok {
		s.log.Warn("unknown quest", zap.String("quest", id))
		return false
	}
	if q.status != StatusAvailable {
		return false
	}

	q.status = StatusActive
	for _, o := range q.objectives {
		o.current = 0
		o.completed = false
		s.state.SetObjectiveProgress(id, o.def.ID, 0)
	}
	s.state.MarkQuestActive(id)

	s.log.Info("quest activated", zap.String("quest", id))
	s.bus.Publish(events.QuestActivated{Quest: id})
	return true
}

// CompleteQuest finishes an active quest: the status flips, rewards are
// granted exactly once, listeners are notified, the completion dialogue
// (if any) is requested, and availability is re-evaluated since
// finishing one quest may unlock others. Calls on quests in any other
// status return false.
func (s *System) CompleteQuest(id string) bool {
	q, ok := s.quests[id]
	if !ok {
		s.log.Warn("unknown quest", zap.String("quest", id))
		return false
	}
	if q.status != StatusActive {
		return false
	}

	q.status = StatusCompleted
	s.state.MarkQuestCompleted(id)
	s.grantRewards(q)

	s.log.Info("quest completed", zap.String("quest", id))
	s.bus.Publish(events.QuestCompleted{Quest: id})
	if q.def.CompletionDialogue != "" {
		s.bus.Publish(events.TriggerDialogue{Dialogue: q.def.CompletionDialogue})
	}

	s.evaluateAvailability()
	return true
}

// OnEvent is the central matching pass: every active quest's incomplete
// objectives, in declared order, that match the event's type and target
// advance by count (0 means 1). Objectives completing here can
// auto-complete their quest in the same pass.
func (s *System) OnEvent(typ, target string, count int) {
	s.dispatch(typ, []string{target}, count)
}

// dispatch matches objectives against any of the acceptable targets.
// Used directly for kill events, which carry both the instance id and
// the derived enemy type.
func (s *System) dispatch(typ string, targets []string, count int) {
	if count <= 0 {
		count = 1
	}
	for _, id := range s.order {
		q := s.quests[id]
		if q.status != StatusActive {
			continue
		}
		for _, o := range q.objectives {
			if o.completed || o.def.Type != typ {
				continue
			}
			if !matchesAny(o.def.Target, targets) {
				continue
			}
			s.advance(q, o, count)
		}
		if q.status == StatusActive && q.allObjectivesDone() {
			s.CompleteQuest(id)
		}
	}
}

// advance increments one objective, mirrors the count into the game
// state's ledger, and emits progress and completion notifications.
func (s *System) advance(q *quest, o *objective, count int) {
	o.current += count
	s.state.SetObjectiveProgress(q.def.ID, o.def.ID, o.current)

	s.bus.Publish(events.ObjectiveUpdated{
		Quest:     q.def.ID,
		Objective: o.def.ID,
		Current:   o.current,
		Required:  o.required(),
	})

	if o.current >= o.required() {
		o.completed = true
		s.bus.Publish(events.ObjectiveComplete{Quest: q.def.ID, Objective: o.def.ID})
	}
}

// grantRewards applies a completed quest's rewards. Faction deltas go
// through the faction system so tier changes and spillover fire.
func (s *System) grantRewards(q *quest) {
	r := q.def.Rewards
	if r.Exp > 0 {
		s.state.AddExp(r.Exp)
	}
	if r.Gold > 0 {
		s.state.AddGold(r.Gold)
	}
	for _, item := range sortedKeys(r.Items) {
		s.state.AddItem(item, r.Items[item])
	}
	for _, f := range sortedKeys(r.Reputation) {
		s.factions.AddReputation(f, r.Reputation[f])
	}
	for _, u := range r.Unlocks {
		s.state.UnlockArea(u)
	}
}

// evaluateAvailability flips locked quests whose prerequisites are all
// completed to available. Runs at build time and after every
// completion.
func (s *System) evaluateAvailability() {
	for _, id := range s.order {
		q := s.quests[id]
		if q.status != StatusLocked {
			continue
		}
		if !s.prereqsMet(q) {
			continue
		}
		q.status = StatusAvailable
		s.log.Info("quest available", zap.String("quest", id))
		s.bus.Publish(events.QuestAvailable{Quest: id})
	}
}

// prereqsMet checks the runtime status map first and falls back to the
// state's completed set, which covers quests finished in an earlier
// session. Prerequisites naming no known quest are treated as met so a
// renamed quest cannot dead-end a whole chain.
func (s *System) prereqsMet(q *quest) bool {
	for _, pre := range q.def.Prerequisites {
		other, ok := s.quests[pre]
		if !ok {
			s.log.Warn("unknown quest prerequisite, treating as met",
				zap.String("quest", q.def.ID),
				zap.String("prerequisite", pre))
			continue
		}
		if other.status == StatusCompleted || s.state.QuestCompleted(pre) {
			continue
		}
		return false
	}
	return true
}

// subscribe wires the fixed set of semantic gameplay events plus the
// generic pass-through into the matching pass.
func (s *System) subscribe() {
	s.bus.Subscribe(events.KindNPCTalked, func(e events.Event) {
		s.OnEvent(ObjectiveTalk, e.(events.NPCTalked).NPC, 1)
	})
	s.bus.Subscribe(events.KindEnemyDead, func(e events.Event) {
		instance := e.(events.EnemyDead).Enemy
		targets := []string{instance}
		if t := EnemyType(instance); t != "" {
			targets = append(targets, t)
		}
		s.dispatch(ObjectiveKill, targets, 1)
	})
	s.bus.Subscribe(events.KindItemCollected, func(e events.Event) {
		ev := e.(events.ItemCollected)
		s.OnEvent(ObjectiveCollect, ev.Item, ev.Count)
	})
	s.bus.Subscribe(events.KindAreaEntered, func(e events.Event) {
		s.OnEvent(ObjectiveTravel, e.(events.AreaEntered).Area, 1)
	})
	s.bus.Subscribe(events.KindObjectInteracted, func(e events.Event) {
		s.OnEvent(ObjectiveInteract, e.(events.ObjectInteracted).Object, 1)
	})
	s.bus.Subscribe(events.KindQuestCompleted, func(e events.Event) {
		s.OnEvent(ObjectiveCompleteQuest, e.(events.QuestCompleted).Quest, 1)
	})
	s.bus.Subscribe(events.KindMinigameCompleted, func(e events.Event) {
		s.OnEvent(ObjectiveMinigame, e.(events.MinigameCompleted).Minigame, 1)
	})
	s.bus.Subscribe(events.KindQuestProgress, func(e events.Event) {
		ev := e.(events.QuestProgress)
		s.OnEvent(ev.Type, ev.Target, ev.Count)
	})
	s.bus.Subscribe(events.KindObjectiveTriggered, func(e events.Event) {
		ev := e.(events.ObjectiveTriggered)
		s.triggerObjective(ev.Quest, ev.Objective)
	})
}

// triggerObjective advances one named objective by one, used by
// dialogue objective effects. Inactive quests and unknown ids are
// ignored.
func (s *System) triggerObjective(questID, objectiveID string) {
	q, ok := s.quests[questID]
	if !ok {
		s.log.Warn("objective effect names unknown quest",
			zap.String("quest", questID),
			zap.String("objective", objectiveID))
		return
	}
	if q.status != StatusActive {
		return
	}
	for _, o := range q.objectives {
		if o.def.ID != objectiveID {
			continue
		}
		if o.completed {
			return
		}
		s.advance(q, o, 1)
		if q.allObjectivesDone() {
			s.CompleteQuest(questID)
		}
		return
	}
	s.log.Warn("objective effect names unknown objective",
		zap.String("quest", questID),
		zap.String("objective", objectiveID))
}

// matchesAny reports whether the objective's target set intersects the
// event's acceptable targets.
func matchesAny(ts types.TargetSet, targets []string) bool {
	for _, t := range targets {
		if ts.Contains(t) {
			return true
		}
	}
	return false
}

// EnemyType derives the generic enemy type from an instance id by
// stripping a trailing numeric suffix: "goblin_2" and "goblin-2" both
// read as "goblin". Ids without one have no distinct type.
func EnemyType(instance string) string {
	i := strings.LastIndexAny(instance, "_-")
	if i <= 0 || i == len(instance)-1 {
		return ""
	}
	for _, r := range instance[i+1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return instance[:i]
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
