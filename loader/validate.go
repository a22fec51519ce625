package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/mirren/emberfall/engine/condition"
	"github.com/mirren/emberfall/engine/faction"
	"github.com/mirren/emberfall/engine/quest"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect kinds.
var validEffectKinds = map[types.EffectKind]bool{
	types.EffectFactionRep:    true,
	types.EffectPersonality:   true,
	types.EffectObjective:     true,
	types.EffectAddItem:       true,
	types.EffectRemoveItem:    true,
	types.EffectGold:          true,
	types.EffectStartMinigame: true,
	types.EffectFlag:          true,
	types.EffectMorality:      true,
}

// Objective types the quest system reacts to.
var knownObjectiveTypes = map[string]bool{
	quest.ObjectiveTalk:          true,
	quest.ObjectiveKill:          true,
	quest.ObjectiveCollect:       true,
	quest.ObjectiveTravel:        true,
	quest.ObjectiveInteract:      true,
	quest.ObjectiveCompleteQuest: true,
	quest.ObjectiveMinigame:      true,
}

// Relation tiers the faction system derives.
var knownTiers = map[string]bool{
	faction.TierHostile:    true,
	faction.TierUnfriendly: true,
	faction.TierNeutral:    true,
	faction.TierFriendly:   true,
	faction.TierAllied:     true,
	faction.TierDevoted:    true,
}

// Area access levels on the faction access ladder.
var knownAccess = map[string]bool{
	faction.AccessRestricted: true,
	faction.AccessLimited:    true,
	faction.AccessPublic:     true,
	faction.AccessExtended:   true,
	faction.AccessFull:       true,
}

// Behavior actions the battle simulator understands. Anything else
// makes the enemy hesitate at runtime, so it is only a warning.
var knownBehaviors = map[string]bool{
	"attack": true,
	"defend": true,
	"taunt":  true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Structural problems become errors; softer issues become
// warnings printed to stderr.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}
	if defs.Game.Start == "" {
		ve.Errors = append(ve.Errors, "Game.Start is required")
	}

	validateQuests(defs, ve)
	validateFactions(defs, ve)
	validateDialogues(defs, ve)
	validateNPCs(defs, ve)
	validateEnemies(defs, ve)

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateQuests(defs *state.Defs, ve *ValidationError) {
	seen := map[string]bool{}
	for _, q := range defs.Quests {
		if seen[q.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate quest id %q", q.ID))
		}
		seen[q.ID] = true
	}

	for _, q := range defs.Quests {
		for _, pre := range q.Prerequisites {
			if _, ok := defs.Quest(pre); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q prerequisite %q does not match any quest", q.ID, pre))
			}
		}
		if q.CompletionDialogue != "" {
			if _, ok := defs.Dialogues[q.CompletionDialogue]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q completion dialogue %q not defined", q.ID, q.CompletionDialogue))
			}
		}
		if q.Faction != "" {
			if _, ok := defs.Faction(q.Faction); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q references unknown faction %q", q.ID, q.Faction))
			}
		}
		if q.Giver != "" {
			if _, ok := defs.NPCs[q.Giver]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"quest %q giver %q does not match any npc", q.ID, q.Giver))
			}
		}
		for factionID := range q.Rewards.Reputation {
			if _, ok := defs.Faction(factionID); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q rewards reputation with unknown faction %q", q.ID, factionID))
			}
		}

		if len(q.Objectives) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("quest %q has no objectives", q.ID))
		}
		objSeen := map[string]bool{}
		for _, o := range q.Objectives {
			if objSeen[o.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q has duplicate objective id %q", q.ID, o.ID))
			}
			objSeen[o.ID] = true

			if o.Required < 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q objective %q has negative required count %d", q.ID, o.ID, o.Required))
			}
			if !knownObjectiveTypes[o.Type] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"quest %q objective %q has unrecognized type %q", q.ID, o.ID, o.Type))
			}
			if len(o.Target) == 0 {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"quest %q objective %q has no target", q.ID, o.ID))
			}
			if o.Type == quest.ObjectiveCompleteQuest {
				for _, target := range o.Target {
					if _, ok := defs.Quest(target); !ok {
						ve.Errors = append(ve.Errors, fmt.Sprintf(
							"quest %q objective %q targets unknown quest %q", q.ID, o.ID, target))
					}
				}
			}
			if o.Type == quest.ObjectiveKill {
				for _, target := range o.Target {
					if _, ok := defs.Enemies[target]; !ok {
						ve.Warnings = append(ve.Warnings, fmt.Sprintf(
							"quest %q objective %q targets unknown enemy %q", q.ID, o.ID, target))
					}
				}
			}
		}
	}
}

func validateFactions(defs *state.Defs, ve *ValidationError) {
	seen := map[string]bool{}
	for _, f := range defs.Factions.Factions {
		if seen[f.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate faction id %q", f.ID))
		}
		seen[f.ID] = true
	}

	for _, f := range defs.Factions.Factions {
		for other := range f.Relations {
			if _, ok := defs.Faction(other); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"faction %q relation references unknown faction %q", f.ID, other))
			}
		}
	}

	for tier := range defs.Factions.ReputationThresholds {
		if !knownTiers[tier] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"reputation threshold for unrecognized tier %q", tier))
		}
	}
	for tier, eff := range defs.Factions.ReputationEffects {
		if !knownTiers[tier] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"reputation effects for unrecognized tier %q", tier))
		}
		if eff.AreaAccess != "" && !knownAccess[eff.AreaAccess] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"tier %q area access %q is not a recognized level", tier, eff.AreaAccess))
		}
	}
}

func validateDialogues(defs *state.Defs, ve *ValidationError) {
	for id, d := range defs.Dialogues {
		if len(d.Lines) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("dialogue %q has no lines", id))
			continue
		}

		lineIDs := map[string]bool{}
		for _, line := range d.Lines {
			if line.ID == "" {
				continue
			}
			if lineIDs[line.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"dialogue %q has duplicate line id %q", id, line.ID))
			}
			lineIDs[line.ID] = true
		}

		for i, line := range d.Lines {
			if badNext(line.Next, lineIDs) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"dialogue %q line %d next %q does not match any line id", id, i+1, line.Next))
			}
			validateEffects(fmt.Sprintf("dialogue %q line %d", id, i+1), line.Effects, defs, ve)

			for j, choice := range line.Choices {
				where := fmt.Sprintf("dialogue %q line %d choice %d", id, i+1, j+1)
				if badNext(choice.Next, lineIDs) {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s next %q does not match any line id", where, choice.Next))
				}
				validateEffects(where, choice.Effects, defs, ve)
				if choice.Condition != "" {
					if err := condition.Check(choice.Condition); err != nil {
						ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", where, err))
					}
				}
			}
		}
	}
}

// badNext reports whether a next target is a dangling branch. Empty
// means sequential advance and "end" terminates, so neither is checked.
func badNext(next string, lineIDs map[string]bool) bool {
	return next != "" && next != "end" && !lineIDs[next]
}

func validateEffects(where string, effects []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectKinds[eff.Kind] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: unknown effect type %q", where, eff.Kind))
			continue
		}
		switch eff.Kind {
		case types.EffectFactionRep:
			if _, ok := defs.Faction(eff.Faction); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: factionRep effect references unknown faction %q", where, eff.Faction))
			}
		case types.EffectObjective:
			q, ok := defs.Quest(eff.Quest)
			if !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: objective effect references unknown quest %q", where, eff.Quest))
				break
			}
			found := false
			for _, o := range q.Objectives {
				if o.ID == eff.Objective {
					found = true
				}
			}
			if !found {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: objective effect references unknown objective %q of quest %q",
					where, eff.Objective, eff.Quest))
			}
		}
	}
}

func validateNPCs(defs *state.Defs, ve *ValidationError) {
	for id, npc := range defs.NPCs {
		if npc.Dialogue != "" {
			if _, ok := defs.Dialogues[npc.Dialogue]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q dialogue %q not defined", id, npc.Dialogue))
			}
		}
		for npcState, dialogueID := range npc.Dialogues {
			if _, ok := defs.Dialogues[dialogueID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q dialogue for state %q references undefined dialogue %q",
					id, npcState, dialogueID))
			}
		}
	}
}

func validateEnemies(defs *state.Defs, ve *ValidationError) {
	for id, enemy := range defs.Enemies {
		if enemy.Health < 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"enemy %q has health %d; enemies need at least 1", id, enemy.Health))
		}
		if enemy.AttackPower < 0 || enemy.Defense < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"enemy %q has negative combat stats", id))
		}
		for action, weight := range enemy.Behavior {
			if weight < 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"enemy %q behavior %q has negative weight %d", id, action, weight))
			}
			if !knownBehaviors[action] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"enemy %q behavior %q is not a recognized action", id, action))
			}
		}
	}
}
