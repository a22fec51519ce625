// Package types defines the shared content data structures for the Emberfall
// engine: quests, factions, dialogue trees, NPCs, enemies, and the effect
// vocabulary. Apart from JSON codec helpers it contains no logic; runtime
// state lives in engine/state.
package types

import "encoding/json"

// QuestCategory is the content section a quest was declared in.
type QuestCategory string

const (
	CategoryMain    QuestCategory = "main"
	CategoryFaction QuestCategory = "faction"
	CategorySide    QuestCategory = "side"
)

// QuestType marks whether a quest is required to finish the story.
type QuestType string

const (
	QuestMandatory QuestType = "mandatory"
	QuestOptional  QuestType = "optional"
)

// TargetSet is an objective target: a single id or a set of acceptable ids.
// Content may write either a plain string or an array of strings.
type TargetSet []string

func (t *TargetSet) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = TargetSet{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = TargetSet(many)
	return nil
}

func (t TargetSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Contains reports whether target is one of the acceptable ids.
func (t TargetSet) Contains(target string) bool {
	for _, v := range t {
		if v == target {
			return true
		}
	}
	return false
}

// ObjectiveDef declares one objective of a quest.
type ObjectiveDef struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"` // talk, kill, collect, travel, interact, complete_quest, minigame, ...
	Target      TargetSet `json:"target"`
	Required    int       `json:"required,omitempty"` // 0 means 1
}

// RewardDef declares what completing a quest grants.
type RewardDef struct {
	Exp        int            `json:"exp,omitempty"`
	Gold       int            `json:"gold,omitempty"`
	Items      map[string]int `json:"items,omitempty"`      // item id → count
	Reputation map[string]int `json:"reputation,omitempty"` // faction id → delta
	Unlocks    []string       `json:"unlocks,omitempty"`    // area/feature ids
}

// QuestDef is the static definition of a quest.
type QuestDef struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Chapter            int            `json:"chapter,omitempty"`
	Category           QuestCategory  `json:"-"` // filled from the document section
	Type               QuestType      `json:"type,omitempty"`
	Faction            string         `json:"faction,omitempty"`
	Giver              string         `json:"giver,omitempty"`
	Prerequisites      []string       `json:"prerequisites,omitempty"`
	Objectives         []ObjectiveDef `json:"objectives"`
	Rewards            RewardDef      `json:"rewards,omitempty"`
	CompletionDialogue string         `json:"completionDialogue,omitempty"`
}

// FactionDef is the static definition of a faction.
type FactionDef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Leader      string         `json:"leader,omitempty"`
	Description string         `json:"description,omitempty"`
	Relations   map[string]int `json:"relations,omitempty"` // stance toward other factions, used only for spillover
}

// TierEffects is one row of the reputation tier → effects table.
type TierEffects struct {
	ShopDiscount  float64 `json:"shopDiscount,omitempty"`
	AreaAccess    string  `json:"areaAccess,omitempty"` // restricted, limited, public, extended, full
	BountyHunters bool    `json:"bountyHunters,omitempty"`
}

// FactionConfig is the faction content document.
type FactionConfig struct {
	Factions             []FactionDef           `json:"factions"`
	ReputationThresholds map[string]int         `json:"reputationThresholds,omitempty"` // tier name → minimum reputation
	ReputationEffects    map[string]TierEffects `json:"reputationEffects,omitempty"`
}

// EffectKind discriminates the closed effect vocabulary.
type EffectKind string

const (
	EffectFactionRep    EffectKind = "factionRep"
	EffectPersonality   EffectKind = "personality"
	EffectObjective     EffectKind = "objective"
	EffectAddItem       EffectKind = "addItem"
	EffectRemoveItem    EffectKind = "removeItem"
	EffectGold          EffectKind = "gold"
	EffectStartMinigame EffectKind = "startMinigame"
	EffectFlag          EffectKind = "flag"
	EffectMorality      EffectKind = "morality"
)

// Effect is a single atomic state mutation instruction, shared by dialogue
// lines and scripted content. Kind selects the variant; only the fields
// that variant names are meaningful.
type Effect struct {
	Kind      EffectKind `json:"type"`
	Faction   string     `json:"faction,omitempty"`   // factionRep
	Trait     string     `json:"trait,omitempty"`     // personality
	Quest     string     `json:"quest,omitempty"`     // objective
	Objective string     `json:"objective,omitempty"` // objective
	Item      string     `json:"item,omitempty"`      // addItem, removeItem
	Key       string     `json:"key,omitempty"`       // flag
	Value     any        `json:"value,omitempty"`     // flag
	Minigame  string     `json:"minigame,omitempty"`  // startMinigame
	Amount    int        `json:"amount,omitempty"`    // factionRep, personality, items, gold, morality
}

// ChoiceDef is one selectable option on a dialogue line.
type ChoiceDef struct {
	Text      string   `json:"text"`
	Next      string   `json:"next,omitempty"` // line id or "end"
	Effects   []Effect `json:"effects,omitempty"`
	Condition string   `json:"condition,omitempty"`
}

// LineDef is a single dialogue line. ID is only needed when the line is a
// branch target. Effects and Choices are mutually exclusive: a line with
// choices never applies its own effects.
type LineDef struct {
	ID          string      `json:"id,omitempty"`
	Text        string      `json:"text"`
	Speaker     string      `json:"speaker,omitempty"`
	SpeakerName string      `json:"speakerName,omitempty"`
	Portrait    string      `json:"portrait,omitempty"`
	Next        string      `json:"next,omitempty"` // line id, "end", or absent to terminate
	Choices     []ChoiceDef `json:"choices,omitempty"`
	Effects     []Effect    `json:"effects,omitempty"`
}

// DialogueDef is a dialogue tree. Lines are ordered; sessions begin at the
// first line and branch by line id.
type DialogueDef struct {
	ID          string    `json:"id,omitempty"`
	Speaker     string    `json:"speaker,omitempty"`
	SpeakerName string    `json:"speakerName,omitempty"`
	Portrait    string    `json:"portrait,omitempty"`
	Lines       []LineDef `json:"lines"`
}

// NPCDef binds an NPC to its dialogue trees.
type NPCDef struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Area      string            `json:"area,omitempty"`
	Dialogue  string            `json:"dialogue,omitempty"`  // default dialogue id
	Dialogues map[string]string `json:"dialogues,omitempty"` // npc state → dialogue id override
}

// EnemyDef is the stat block consumed by the battle simulator.
type EnemyDef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Health      int            `json:"health"`
	AttackPower int            `json:"attackPower"`
	Defense     int            `json:"defense"`
	Behavior    map[string]int `json:"behavior,omitempty"` // action → weight
	ExpReward   int            `json:"expReward,omitempty"`
	GoldReward  int            `json:"goldReward,omitempty"`
	Boss        bool           `json:"boss,omitempty"`
}

// GameDef holds game metadata.
type GameDef struct {
	Title   string `json:"title"`
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	Start   string `json:"start"` // starting area id
	Intro   string `json:"intro,omitempty"`
}
