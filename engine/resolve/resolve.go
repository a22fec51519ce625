// Package resolve maps player-typed names to content ids.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mirren/emberfall/engine/quest"
	"github.com/mirren/emberfall/engine/state"
)

// AmbiguityError indicates multiple entries matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	What string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s called %q", e.What, e.Name)
}

// NPC resolves a typed name to an NPC id. NPCs bound to an area are only
// visible while the player stands in it; NPCs with no area always are.
func NPC(defs *state.Defs, gs *state.GameState, name string) (string, error) {
	if _, ok := defs.NPCs[name]; ok {
		return name, nil
	}
	lower := strings.ToLower(name)
	var matches []string
	for id, npc := range defs.NPCs {
		if npc.Area != "" && npc.Area != gs.CurrentArea() {
			continue
		}
		if matchesName(id, npc.Name, lower) {
			matches = append(matches, id)
		}
	}
	return pick("npc", name, matches)
}

// Enemy resolves a typed name to a fightable instance id. An exact or
// numbered id ("goblin_2") passes through with its instance suffix
// intact; otherwise display names match.
func Enemy(defs *state.Defs, name string) (string, error) {
	norm := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	if _, ok := defs.Enemies[norm]; ok {
		return norm, nil
	}
	if t := quest.EnemyType(norm); t != "" {
		if _, ok := defs.Enemies[t]; ok {
			return norm, nil
		}
	}
	var matches []string
	for id, def := range defs.Enemies {
		if matchesName(id, def.Name, strings.ToLower(name)) {
			matches = append(matches, id)
		}
	}
	return pick("enemy", name, matches)
}

// Quest resolves a typed name or title fragment to a quest id.
func Quest(defs *state.Defs, name string) (string, error) {
	if _, ok := defs.Quest(name); ok {
		return name, nil
	}
	lower := strings.ToLower(name)
	var matches []string
	for _, q := range defs.Quests {
		if matchesName(q.ID, q.Title, lower) || strings.Contains(strings.ToLower(q.Title), lower) {
			matches = append(matches, q.ID)
		}
	}
	return pick("quest", name, matches)
}

// matchesName checks a query against a display name and an id:
// exact name match, word-based partial match ("elder" matches
// "Elder Maren"), id match, and underscore normalization ("rusty lever"
// matches "rusty_lever").
func matchesName(id, display, query string) bool {
	d := strings.ToLower(display)
	if d == query {
		return true
	}
	for _, word := range strings.Fields(d) {
		if word == query {
			return true
		}
	}
	idLower := strings.ToLower(id)
	if idLower == query {
		return true
	}
	return strings.ReplaceAll(query, " ", "_") == idLower
}

func pick(what, name string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &NotFoundError{What: what, Name: name}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}
