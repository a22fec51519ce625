// Package save defines the persisted save document and its JSON codec.
// Field names are camelCase: the layout is an external contract shared
// with saves written by earlier releases of the game.
package save

import (
	"encoding/json"
	"time"
)

// Version is the format version written into new documents.
const Version = 1

// Position is the player's world position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ItemStack is one inventory entry. The inventory serializes as a list
// sorted by item id so documents diff cleanly.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Player is the player section of a document.
type Player struct {
	Position    Position          `json:"position"`
	CurrentArea string            `json:"currentArea"`
	Health      int               `json:"health"`
	MaxHealth   int               `json:"maxHealth"`
	Energy      int               `json:"energy"`
	MaxEnergy   int               `json:"maxEnergy"`
	AttackPower int               `json:"attackPower"`
	Defense     int               `json:"defense"`
	Abilities   []string          `json:"abilities"`
	Inventory   []ItemStack       `json:"inventory"`
	Equipment   map[string]string `json:"equipment"`
	Gold        int               `json:"gold"`
	Exp         int               `json:"exp"`
	Level       int               `json:"level"`
	Skills      []string          `json:"skills"`
}

// Quests is the quest section: the two lifecycle sets plus the objective
// progress ledger.
type Quests struct {
	Active     []string                  `json:"active"`
	Completed  []string                  `json:"completed"`
	Objectives map[string]map[string]int `json:"objectives"`
}

// World is the world section.
type World struct {
	UnlockedAreas     []string          `json:"unlockedAreas"`
	DiscoveredSecrets []string          `json:"discoveredSecrets"`
	DefeatedBosses    []string          `json:"defeatedBosses"`
	NPCStates         map[string]string `json:"npcStates"`
}

// Document is the complete persisted save layout. Personality and
// Morality are optional: saves from before those systems existed omit
// them.
type Document struct {
	Version     int            `json:"version"`
	SavedAt     time.Time      `json:"savedAt"`
	Player      Player         `json:"player"`
	Quests      Quests         `json:"quests"`
	Factions    map[string]int `json:"factions"`
	World       World          `json:"world"`
	Flags       map[string]any `json:"flags"`
	PlayTime    float64        `json:"playTime"`
	Personality map[string]int `json:"personality,omitempty"`
	Morality    *int           `json:"morality,omitempty"`
}

// Encode serializes a document as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a document. Unknown fields are ignored; missing sections
// come back as empty (never nil) maps so older saves load as zero values.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Player.Equipment == nil {
		doc.Player.Equipment = map[string]string{}
	}
	if doc.Quests.Objectives == nil {
		doc.Quests.Objectives = map[string]map[string]int{}
	}
	if doc.Factions == nil {
		doc.Factions = map[string]int{}
	}
	if doc.World.NPCStates == nil {
		doc.World.NPCStates = map[string]string{}
	}
	if doc.Flags == nil {
		doc.Flags = map[string]any{}
	}
	return &doc, nil
}
