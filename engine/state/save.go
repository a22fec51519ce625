package state

import (
	"sort"
	"time"

	"github.com/mirren/emberfall/engine/save"
)

// SaveData snapshots the complete durable state as a save document.
func (g *GameState) SaveData() *save.Document {
	morality := g.morality
	return &save.Document{
		Version: save.Version,
		SavedAt: time.Now(),
		Player: save.Player{
			Position:    save.Position{X: g.posX, Y: g.posY},
			CurrentArea: g.currentArea,
			Health:      g.health,
			MaxHealth:   g.maxHealth,
			Energy:      g.energy,
			MaxEnergy:   g.maxEnergy,
			AttackPower: g.attackPower,
			Defense:     g.defense,
			Abilities:   g.Abilities(),
			Inventory:   g.inventoryList(),
			Equipment:   g.Equipment(),
			Gold:        g.gold,
			Exp:         g.exp,
			Level:       g.level,
			Skills:      g.Skills(),
		},
		Quests: save.Quests{
			Active:     g.ActiveQuests(),
			Completed:  g.CompletedQuests(),
			Objectives: g.ObjectiveSnapshot(),
		},
		Factions: g.FactionReps(),
		World: save.World{
			UnlockedAreas:     g.UnlockedAreas(),
			DiscoveredSecrets: g.DiscoveredSecrets(),
			DefeatedBosses:    g.DefeatedBosses(),
			NPCStates:         g.NPCStates(),
		},
		Flags:       g.Flags(),
		PlayTime:    g.PlayTime(),
		Personality: g.Personality(),
		Morality:    &morality,
	}
}

// LoadSave overwrites every durable field from a save document. Derived
// runtime timers are not restored: the last-update timestamp resets to
// now.
func (g *GameState) LoadSave(doc *save.Document) {
	g.init()

	p := doc.Player
	g.posX = p.Position.X
	g.posY = p.Position.Y
	if p.CurrentArea != "" {
		g.currentArea = p.CurrentArea
	}
	if p.MaxHealth > 0 {
		g.maxHealth = p.MaxHealth
	}
	g.SetHealth(p.Health)
	if p.MaxEnergy > 0 {
		g.maxEnergy = p.MaxEnergy
	}
	g.energy = clampInt(p.Energy, 0, g.maxEnergy)
	if p.AttackPower > 0 {
		g.attackPower = p.AttackPower
	}
	if p.Defense > 0 {
		g.defense = p.Defense
	}
	if p.Level > 0 {
		g.level = p.Level
	}
	if p.Exp > 0 {
		g.exp = p.Exp
	}
	if p.Gold > 0 {
		g.gold = p.Gold
	}
	for _, id := range p.Abilities {
		g.abilities[id] = true
	}
	for _, st := range p.Inventory {
		if st.Count > 0 {
			g.inventory[st.Item] = st.Count
		}
	}
	for slot, item := range p.Equipment {
		g.equipment[slot] = item
	}
	g.skills = append([]string(nil), p.Skills...)

	for _, id := range doc.Quests.Active {
		g.activeQuests[id] = struct{}{}
	}
	for _, id := range doc.Quests.Completed {
		g.completedQuests[id] = struct{}{}
	}
	for quest, objectives := range doc.Quests.Objectives {
		for objective, count := range objectives {
			g.SetObjectiveProgress(quest, objective, count)
		}
	}

	for id, rep := range doc.Factions {
		g.reputation[id] = rep
	}

	for _, id := range doc.World.UnlockedAreas {
		g.unlockedAreas[id] = struct{}{}
	}
	for _, id := range doc.World.DiscoveredSecrets {
		g.discoveredSecrets[id] = struct{}{}
	}
	for _, id := range doc.World.DefeatedBosses {
		g.defeatedBosses[id] = struct{}{}
	}
	for npc, st := range doc.World.NPCStates {
		g.npcStates[npc] = st
	}

	for k, v := range doc.Flags {
		g.flags[k] = normalizeFlag(v)
	}

	if doc.PlayTime > 0 {
		g.playTime = doc.PlayTime
	}
	for trait, v := range doc.Personality {
		g.personality[trait] = v
	}
	if doc.Morality != nil {
		g.morality = clampInt(*doc.Morality, 0, 100)
	}
}

func (g *GameState) inventoryList() []save.ItemStack {
	items := make([]save.ItemStack, 0, len(g.inventory))
	for id, count := range g.inventory {
		items = append(items, save.ItemStack{Item: id, Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Item < items[j].Item })
	return items
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
