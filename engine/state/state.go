// Package state holds the immutable content definitions and the mutable
// game state all core systems read and mutate.
package state

import (
	"sort"
	"time"

	"github.com/mirren/emberfall/types"
)

// Defs holds the immutable content definitions loaded at startup.
type Defs struct {
	Game      types.GameDef
	Quests    []types.QuestDef // declared order: main block, then faction, then side
	Factions  types.FactionConfig
	Dialogues map[string]types.DialogueDef
	NPCs      map[string]types.NPCDef
	Enemies   map[string]types.EnemyDef
}

// Quest returns the definition for id, scanning in declared order.
func (d *Defs) Quest(id string) (types.QuestDef, bool) {
	for _, q := range d.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return types.QuestDef{}, false
}

// Faction returns the definition for id.
func (d *Defs) Faction(id string) (types.FactionDef, bool) {
	for _, f := range d.Factions.Factions {
		if f.ID == id {
			return f, true
		}
	}
	return types.FactionDef{}, false
}

// ProgressKey addresses one objective in the flat progress table.
type ProgressKey struct {
	Quest     string
	Objective string
}

// New-game starting stats.
const (
	startHealth   = 100
	startEnergy   = 50
	startAttack   = 10
	startDefense  = 5
	startMorality = 50
)

// GameState is the single source of truth for one game session. Construct
// with New and hand it to the systems at their construction time.
//
// GameState is not safe for concurrent use: the core runs on one logical
// thread. Anything outside it (a save-serialization pass, a UI thread)
// must go through the getters, which return copies of compound fields.
type GameState struct {
	startArea string

	health      int
	maxHealth   int
	energy      int
	maxEnergy   int
	attackPower int
	defense     int
	level       int
	exp         int
	gold        int

	posX        float64
	posY        float64
	currentArea string

	abilities map[string]bool
	inventory map[string]int
	equipment map[string]string
	skills    []string

	activeQuests    map[string]struct{}
	completedQuests map[string]struct{}
	progress        map[ProgressKey]int

	reputation map[string]int

	unlockedAreas     map[string]struct{}
	discoveredSecrets map[string]struct{}
	defeatedBosses    map[string]struct{}
	npcStates         map[string]string

	flags map[string]any

	personality map[string]int
	morality    int

	playTime   float64
	lastUpdate time.Time
}

// New creates a fresh game state positioned at the content's start area.
func New(defs *Defs) *GameState {
	g := &GameState{startArea: defs.Game.Start}
	g.init()
	return g
}

// Reset reinitializes every field for a new game.
func (g *GameState) Reset() {
	g.init()
}

func (g *GameState) init() {
	g.health = startHealth
	g.maxHealth = startHealth
	g.energy = startEnergy
	g.maxEnergy = startEnergy
	g.attackPower = startAttack
	g.defense = startDefense
	g.level = 1
	g.exp = 0
	g.gold = 0
	g.posX = 0
	g.posY = 0
	g.currentArea = g.startArea
	g.abilities = map[string]bool{}
	g.inventory = map[string]int{}
	g.equipment = map[string]string{}
	g.skills = nil
	g.activeQuests = map[string]struct{}{}
	g.completedQuests = map[string]struct{}{}
	g.progress = map[ProgressKey]int{}
	g.reputation = map[string]int{}
	g.unlockedAreas = map[string]struct{}{}
	g.discoveredSecrets = map[string]struct{}{}
	g.defeatedBosses = map[string]struct{}{}
	g.npcStates = map[string]string{}
	g.flags = map[string]any{}
	g.personality = map[string]int{}
	g.morality = startMorality
	g.playTime = 0
	g.lastUpdate = time.Now()
}

// Health returns current health.
func (g *GameState) Health() int { return g.health }

// MaxHealth returns the health cap.
func (g *GameState) MaxHealth() int { return g.maxHealth }

// Energy returns current energy.
func (g *GameState) Energy() int { return g.energy }

// MaxEnergy returns the energy cap.
func (g *GameState) MaxEnergy() int { return g.maxEnergy }

// AttackPower returns the current attack stat.
func (g *GameState) AttackPower() int { return g.attackPower }

// Defense returns the current defense stat.
func (g *GameState) Defense() int { return g.defense }

// Level returns the current level.
func (g *GameState) Level() int { return g.level }

// Exp returns experience accumulated toward the next level.
func (g *GameState) Exp() int { return g.exp }

// Gold returns the gold balance.
func (g *GameState) Gold() int { return g.gold }

// Dead reports whether health has reached zero.
func (g *GameState) Dead() bool { return g.health <= 0 }

// Damage reduces health, clamping at zero. Non-positive amounts are
// ignored.
func (g *GameState) Damage(amount int) {
	if amount <= 0 {
		return
	}
	g.health -= amount
	if g.health < 0 {
		g.health = 0
	}
}

// Heal raises health, clamping at maxHealth. Non-positive amounts are
// ignored.
func (g *GameState) Heal(amount int) {
	if amount <= 0 {
		return
	}
	g.health += amount
	if g.health > g.maxHealth {
		g.health = g.maxHealth
	}
}

// SetHealth stores a health value clamped to [0, maxHealth].
func (g *GameState) SetHealth(v int) {
	if v < 0 {
		v = 0
	}
	if v > g.maxHealth {
		v = g.maxHealth
	}
	g.health = v
}

// UseEnergy spends energy. Returns false without mutating when the
// balance is insufficient.
func (g *GameState) UseEnergy(amount int) bool {
	if amount <= 0 {
		return true
	}
	if g.energy < amount {
		return false
	}
	g.energy -= amount
	return true
}

// RestoreEnergy raises energy, clamping at maxEnergy.
func (g *GameState) RestoreEnergy(amount int) {
	if amount <= 0 {
		return
	}
	g.energy += amount
	if g.energy > g.maxEnergy {
		g.energy = g.maxEnergy
	}
}

// ExpRequirement returns the experience needed to clear the current level.
func (g *GameState) ExpRequirement() int {
	return 100 + (g.level-1)*50
}

// AddExp grants experience and applies level-ups, returning the number of
// levels gained. The requirement for the next level is 100 + (level-1)*50;
// one large grant can cross several levels, each raising maxHealth by 10
// (with a full heal), attackPower by 2, and defense by 1.
func (g *GameState) AddExp(amount int) int {
	if amount <= 0 {
		return 0
	}
	g.exp += amount
	levels := 0
	for g.exp >= g.ExpRequirement() {
		g.exp -= g.ExpRequirement()
		g.level++
		g.maxHealth += 10
		g.health = g.maxHealth
		g.attackPower += 2
		g.defense++
		levels++
	}
	return levels
}

// AddGold credits gold. Non-positive amounts are ignored.
func (g *GameState) AddGold(amount int) {
	if amount <= 0 {
		return
	}
	g.gold += amount
}

// SpendGold debits gold. Returns false without mutating when the balance
// is insufficient.
func (g *GameState) SpendGold(amount int) bool {
	if amount <= 0 {
		return true
	}
	if g.gold < amount {
		return false
	}
	g.gold -= amount
	return true
}

// AddItem adds count of an item to the inventory.
func (g *GameState) AddItem(id string, count int) {
	if count <= 0 {
		return
	}
	g.inventory[id] += count
}

// RemoveItem takes count of an item out of the inventory. Returns false
// without mutating when the held count is insufficient. Entries reaching
// zero are removed.
func (g *GameState) RemoveItem(id string, count int) bool {
	if count <= 0 {
		return true
	}
	have := g.inventory[id]
	if have < count {
		return false
	}
	if have == count {
		delete(g.inventory, id)
	} else {
		g.inventory[id] = have - count
	}
	return true
}

// HasItem reports whether at least one of the item is held.
func (g *GameState) HasItem(id string) bool { return g.inventory[id] > 0 }

// ItemCount returns the held count for an item.
func (g *GameState) ItemCount(id string) int { return g.inventory[id] }

// Inventory returns a copy of the inventory map.
func (g *GameState) Inventory() map[string]int {
	out := make(map[string]int, len(g.inventory))
	for k, v := range g.inventory {
		out[k] = v
	}
	return out
}

// UnlockAbility turns on an ability flag (e.g. "doubleJump").
func (g *GameState) UnlockAbility(id string) { g.abilities[id] = true }

// HasAbility reports whether an ability is unlocked.
func (g *GameState) HasAbility(id string) bool { return g.abilities[id] }

// Abilities returns the unlocked ability ids, sorted.
func (g *GameState) Abilities() []string {
	var out []string
	for id, on := range g.abilities {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Equip binds an item to an equipment slot.
func (g *GameState) Equip(slot, itemID string) { g.equipment[slot] = itemID }

// Unequip clears an equipment slot.
func (g *GameState) Unequip(slot string) { delete(g.equipment, slot) }

// Equipped returns the item bound to a slot, or "".
func (g *GameState) Equipped(slot string) string { return g.equipment[slot] }

// Equipment returns a copy of the slot → item map.
func (g *GameState) Equipment() map[string]string {
	out := make(map[string]string, len(g.equipment))
	for k, v := range g.equipment {
		out[k] = v
	}
	return out
}

// LearnSkill appends a skill id, once.
func (g *GameState) LearnSkill(id string) {
	for _, s := range g.skills {
		if s == id {
			return
		}
	}
	g.skills = append(g.skills, id)
}

// HasSkill reports whether a skill was learned.
func (g *GameState) HasSkill(id string) bool {
	for _, s := range g.skills {
		if s == id {
			return true
		}
	}
	return false
}

// Skills returns a copy of the learned skill list, in learn order.
func (g *GameState) Skills() []string {
	return append([]string(nil), g.skills...)
}

// SetPosition stores the player's world position.
func (g *GameState) SetPosition(x, y float64) {
	g.posX = x
	g.posY = y
}

// Position returns the player's world position.
func (g *GameState) Position() (x, y float64) { return g.posX, g.posY }

// SetCurrentArea stores the area the player is in.
func (g *GameState) SetCurrentArea(id string) { g.currentArea = id }

// CurrentArea returns the area the player is in.
func (g *GameState) CurrentArea() string { return g.currentArea }

// MarkQuestActive records a quest in the active set. Lifecycle rules live
// in the quest system; GameState just stores.
func (g *GameState) MarkQuestActive(id string) {
	g.activeQuests[id] = struct{}{}
}

// MarkQuestCompleted moves a quest from the active set to the completed
// set.
func (g *GameState) MarkQuestCompleted(id string) {
	delete(g.activeQuests, id)
	g.completedQuests[id] = struct{}{}
}

// QuestActive reports membership in the active set.
func (g *GameState) QuestActive(id string) bool {
	_, ok := g.activeQuests[id]
	return ok
}

// QuestCompleted reports membership in the completed set.
func (g *GameState) QuestCompleted(id string) bool {
	_, ok := g.completedQuests[id]
	return ok
}

// ActiveQuests returns the active quest ids, sorted.
func (g *GameState) ActiveQuests() []string { return sortedKeys(g.activeQuests) }

// CompletedQuests returns the completed quest ids, sorted.
func (g *GameState) CompletedQuests() []string { return sortedKeys(g.completedQuests) }

// ObjectiveProgress returns the ledger count for one objective.
func (g *GameState) ObjectiveProgress(quest, objective string) int {
	return g.progress[ProgressKey{quest, objective}]
}

// SetObjectiveProgress stores the ledger count for one objective.
// Negative counts are stored as zero.
func (g *GameState) SetObjectiveProgress(quest, objective string, count int) {
	if count < 0 {
		count = 0
	}
	g.progress[ProgressKey{quest, objective}] = count
}

// ClearQuestProgress zeroes the ledger for every objective of one quest.
func (g *GameState) ClearQuestProgress(quest string) {
	for k := range g.progress {
		if k.Quest == quest {
			delete(g.progress, k)
		}
	}
}

// ObjectiveSnapshot returns the ledger as questId → objectiveId → count,
// copied.
func (g *GameState) ObjectiveSnapshot() map[string]map[string]int {
	out := map[string]map[string]int{}
	for k, v := range g.progress {
		m := out[k.Quest]
		if m == nil {
			m = map[string]int{}
			out[k.Quest] = m
		}
		m[k.Objective] = v
	}
	return out
}

// FactionRep returns the raw stored reputation for a faction. Clamping is
// the faction system's job, not GameState's.
func (g *GameState) FactionRep(id string) int { return g.reputation[id] }

// SetFactionRep stores a raw reputation value. Callers are trusted to
// clamp; the faction system owns the [-100, 100] domain.
func (g *GameState) SetFactionRep(id string, v int) { g.reputation[id] = v }

// FactionReps returns a copy of the reputation map.
func (g *GameState) FactionReps() map[string]int {
	out := make(map[string]int, len(g.reputation))
	for k, v := range g.reputation {
		out[k] = v
	}
	return out
}

// UnlockArea records an unlocked area or feature id.
func (g *GameState) UnlockArea(id string) { g.unlockedAreas[id] = struct{}{} }

// AreaUnlocked reports whether an area or feature was unlocked.
func (g *GameState) AreaUnlocked(id string) bool {
	_, ok := g.unlockedAreas[id]
	return ok
}

// UnlockedAreas returns the unlocked ids, sorted.
func (g *GameState) UnlockedAreas() []string { return sortedKeys(g.unlockedAreas) }

// DiscoverSecret records a discovered secret.
func (g *GameState) DiscoverSecret(id string) { g.discoveredSecrets[id] = struct{}{} }

// SecretDiscovered reports whether a secret was found.
func (g *GameState) SecretDiscovered(id string) bool {
	_, ok := g.discoveredSecrets[id]
	return ok
}

// DiscoveredSecrets returns the discovered secret ids, sorted.
func (g *GameState) DiscoveredSecrets() []string { return sortedKeys(g.discoveredSecrets) }

// RecordBossDefeat records a defeated boss.
func (g *GameState) RecordBossDefeat(id string) { g.defeatedBosses[id] = struct{}{} }

// BossDefeated reports whether a boss was defeated.
func (g *GameState) BossDefeated(id string) bool {
	_, ok := g.defeatedBosses[id]
	return ok
}

// DefeatedBosses returns the defeated boss ids, sorted.
func (g *GameState) DefeatedBosses() []string { return sortedKeys(g.defeatedBosses) }

// SetNPCState stores an NPC's state string (selects dialogue variants).
func (g *GameState) SetNPCState(npc, state string) { g.npcStates[npc] = state }

// NPCState returns an NPC's state string, or "".
func (g *GameState) NPCState(npc string) string { return g.npcStates[npc] }

// NPCStates returns a copy of the npc → state map.
func (g *GameState) NPCStates() map[string]string {
	out := make(map[string]string, len(g.npcStates))
	for k, v := range g.npcStates {
		out[k] = v
	}
	return out
}

// SetFlag stores a story flag. Values are booleans, numbers, or strings;
// numbers are normalized to float64, matching their JSON representation.
func (g *GameState) SetFlag(key string, value any) {
	g.flags[key] = normalizeFlag(value)
}

// Flag returns a story flag value and whether it was set.
func (g *GameState) Flag(key string) (any, bool) {
	v, ok := g.flags[key]
	return v, ok
}

// Flags returns a copy of the flag map.
func (g *GameState) Flags() map[string]any {
	out := make(map[string]any, len(g.flags))
	for k, v := range g.flags {
		out[k] = v
	}
	return out
}

func normalizeFlag(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// AdjustTrait shifts a personality trait accumulator (cold, warm,
// aggressive, diplomatic).
func (g *GameState) AdjustTrait(trait string, amount int) {
	g.personality[trait] += amount
}

// Trait returns a personality accumulator.
func (g *GameState) Trait(trait string) int { return g.personality[trait] }

// Personality returns a copy of the trait map.
func (g *GameState) Personality() map[string]int {
	out := make(map[string]int, len(g.personality))
	for k, v := range g.personality {
		out[k] = v
	}
	return out
}

// AdjustMorality shifts the morality score, clamping to [0, 100].
func (g *GameState) AdjustMorality(amount int) {
	g.morality += amount
	if g.morality < 0 {
		g.morality = 0
	}
	if g.morality > 100 {
		g.morality = 100
	}
}

// Morality returns the morality score.
func (g *GameState) Morality() int { return g.morality }

// PlayTime returns total played seconds, including the running session.
func (g *GameState) PlayTime() float64 {
	return g.playTime + time.Since(g.lastUpdate).Seconds()
}

func sortedKeys(set map[string]struct{}) []string {
	var out []string
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
