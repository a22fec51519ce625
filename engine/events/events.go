// Package events implements the typed in-process event bus connecting the
// quest, faction, and dialogue systems. Dispatch is synchronous: Publish runs
// every matching handler in registration order before returning, so a handler
// may publish further events and they nest to completion.
package events

import "github.com/mirren/emberfall/types"

// Kind identifies an event variant.
type Kind string

// Gameplay events consumed by the quest system.
const (
	KindNPCTalked         Kind = "npc-talked"
	KindEnemyDead         Kind = "enemy-dead"
	KindItemCollected     Kind = "item-collected"
	KindAreaEntered       Kind = "area-entered"
	KindObjectInteracted  Kind = "object-interacted"
	KindMinigameCompleted Kind = "minigame-completed"
	KindQuestProgress     Kind = "quest-event"
)

// Notifications emitted by the core systems. KindQuestCompleted appears in
// both surfaces: the quest system emits it and consumes it for
// complete_quest objectives.
const (
	KindDialogueStarted    Kind = "dialogue-started"
	KindDialogueLine       Kind = "dialogue-line"
	KindDialogueEnded      Kind = "dialogue-ended"
	KindChoiceSelected     Kind = "choice-selected"
	KindEffectApplied      Kind = "effect-applied"
	KindMinigameStarted    Kind = "minigame-started"
	KindObjectiveTriggered Kind = "objective-triggered"
	KindRepChanged         Kind = "rep-changed"
	KindRelationChanged    Kind = "relation-changed"
	KindQuestAvailable     Kind = "quest-available"
	KindQuestActivated     Kind = "quest-activated"
	KindQuestCompleted     Kind = "quest-completed"
	KindObjectiveUpdated   Kind = "objective-updated"
	KindObjectiveComplete  Kind = "objective-complete"
	KindTriggerDialogue    Kind = "trigger-dialogue"
	KindBattleEnded        Kind = "battle-ended"
)

// Event is implemented by every payload type in this package.
type Event interface {
	Kind() Kind
}

// NPCTalked fires after the player talks to an NPC.
type NPCTalked struct{ NPC string }

// EnemyDead fires when a battle kills an enemy. Enemy is the literal
// instance id (e.g. "goblin_2"); the quest system derives the generic type
// from it.
type EnemyDead struct{ Enemy string }

// ItemCollected fires when items enter the inventory from the world.
// Count 0 means 1.
type ItemCollected struct {
	Item  string
	Count int
}

// AreaEntered fires when the player enters an area.
type AreaEntered struct{ Area string }

// ObjectInteracted fires when the player interacts with a world object.
type ObjectInteracted struct{ Object string }

// MinigameCompleted fires when an external minigame reports success.
type MinigameCompleted struct{ Minigame string }

// QuestProgress is the generic pass-through gameplay event: new gameplay
// hooks advance objectives by emitting one, with no quest system changes.
// Count 0 means 1.
type QuestProgress struct {
	Type   string
	Target string
	Count  int
}

// DialogueStarted fires when a session begins.
type DialogueStarted struct{ Dialogue string }

// RenderChoice is a surviving choice with its index in the filtered list.
type RenderChoice struct {
	Index int
	Text  string
}

// DialogueLine is the render payload for one presented line.
type DialogueLine struct {
	Dialogue    string
	Speaker     string
	SpeakerName string
	Portrait    string
	Text        string
	Choices     []RenderChoice
}

// DialogueEnded fires when a session reaches its end. ForceClose does not
// emit it.
type DialogueEnded struct{ Dialogue string }

// ChoiceSelected fires when the player picks a filtered choice.
type ChoiceSelected struct {
	Dialogue string
	Index    int
	Text     string
}

// EffectApplied is the generic notification broadcast for every applied
// effect.
type EffectApplied struct{ Effect types.Effect }

// ObjectiveTriggered advances one specific objective by one. The objective
// effect emits it so dialogue can move quests forward directly.
type ObjectiveTriggered struct {
	Quest     string
	Objective string
}

// MinigameStarted asks an external collaborator to run a minigame.
type MinigameStarted struct{ Minigame string }

// RepChanged fires whenever a faction's stored reputation changes.
type RepChanged struct {
	Faction string
	Old     int
	New     int
}

// RelationChanged fires when a reputation change crosses a tier boundary.
// Tiers are carried by name.
type RelationChanged struct {
	Faction string
	Old     string
	New     string
}

// QuestAvailable fires when a locked quest's prerequisites are met.
type QuestAvailable struct{ Quest string }

// QuestActivated fires when the player takes on an available quest.
type QuestActivated struct{ Quest string }

// QuestCompleted fires on completion and doubles as the gameplay event for
// complete_quest objectives of other quests.
type QuestCompleted struct{ Quest string }

// ObjectiveUpdated fires on every progress increment.
type ObjectiveUpdated struct {
	Quest     string
	Objective string
	Current   int
	Required  int
}

// ObjectiveComplete fires the moment an objective reaches its required
// count.
type ObjectiveComplete struct {
	Quest     string
	Objective string
}

// TriggerDialogue asks the session owner to start a dialogue, used for
// quest completion dialogues.
type TriggerDialogue struct{ Dialogue string }

// BattleEnded fires when a battle resolves. Victory is false both for
// defeat and for a successful flee.
type BattleEnded struct {
	Enemy   string
	Victory bool
	Fled    bool
}

func (NPCTalked) Kind() Kind          { return KindNPCTalked }
func (EnemyDead) Kind() Kind          { return KindEnemyDead }
func (ItemCollected) Kind() Kind      { return KindItemCollected }
func (AreaEntered) Kind() Kind        { return KindAreaEntered }
func (ObjectInteracted) Kind() Kind   { return KindObjectInteracted }
func (MinigameCompleted) Kind() Kind  { return KindMinigameCompleted }
func (QuestProgress) Kind() Kind      { return KindQuestProgress }
func (DialogueStarted) Kind() Kind    { return KindDialogueStarted }
func (DialogueLine) Kind() Kind       { return KindDialogueLine }
func (DialogueEnded) Kind() Kind      { return KindDialogueEnded }
func (ChoiceSelected) Kind() Kind     { return KindChoiceSelected }
func (EffectApplied) Kind() Kind      { return KindEffectApplied }
func (ObjectiveTriggered) Kind() Kind { return KindObjectiveTriggered }
func (MinigameStarted) Kind() Kind    { return KindMinigameStarted }
func (RepChanged) Kind() Kind         { return KindRepChanged }
func (RelationChanged) Kind() Kind    { return KindRelationChanged }
func (QuestAvailable) Kind() Kind     { return KindQuestAvailable }
func (QuestActivated) Kind() Kind     { return KindQuestActivated }
func (QuestCompleted) Kind() Kind     { return KindQuestCompleted }
func (ObjectiveUpdated) Kind() Kind   { return KindObjectiveUpdated }
func (ObjectiveComplete) Kind() Kind  { return KindObjectiveComplete }
func (TriggerDialogue) Kind() Kind    { return KindTriggerDialogue }
func (BattleEnded) Kind() Kind        { return KindBattleEnded }

// Handler consumes one event.
type Handler func(Event)

// Bus is a synchronous publish/subscribe hub for one game session. It is
// not safe for concurrent use: the whole core runs on one logical thread.
type Bus struct {
	handlers map[Kind][]Handler
	all      []Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers fn for one kind. Handlers for a kind run in
// registration order.
func (b *Bus) Subscribe(k Kind, fn Handler) {
	b.handlers[k] = append(b.handlers[k], fn)
}

// SubscribeAll registers fn for every kind. These handlers run after the
// kind-specific ones.
func (b *Bus) SubscribeAll(fn Handler) {
	b.all = append(b.all, fn)
}

// Publish dispatches e and returns once every handler has run. Handlers
// may publish further events; those dispatch immediately, nested within
// the outer call.
func (b *Bus) Publish(e Event) {
	for _, fn := range b.handlers[e.Kind()] {
		fn(e)
	}
	for _, fn := range b.all {
		fn(e)
	}
}
