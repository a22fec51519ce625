package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "village"},
		Quests: []types.QuestDef{
			{ID: "q_intro", Title: "Embers at Dawn"},
			{ID: "q_hunt", Title: "Cull the Goblins"},
			{ID: "q_pact", Title: "The Iron Pact"},
		},
		NPCs: map[string]types.NPCDef{
			"elder":         {ID: "elder", Name: "Elder Maren", Area: "village"},
			"harbor_master": {ID: "harbor_master", Name: "Harbormaster Quill", Area: "harbor"},
			"wanderer":      {ID: "wanderer", Name: "The Wanderer"},
			"old_miner":     {ID: "old_miner", Name: "Old Miner", Area: "village"},
			"old_scribe":    {ID: "old_scribe", Name: "Old Scribe", Area: "village"},
		},
		Enemies: map[string]types.EnemyDef{
			"goblin":      {ID: "goblin", Name: "Cave Goblin"},
			"marsh_troll": {ID: "marsh_troll", Name: "Marsh Troll"},
		},
	}
}

// --- NPCs ---

func TestNPC_ExactID(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	id, err := NPC(defs, gs, "elder")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "elder" {
		t.Errorf("expected elder, got %q", id)
	}
}

func TestNPC_ByNameWord(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	id, err := NPC(defs, gs, "maren")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "elder" {
		t.Errorf("expected elder, got %q", id)
	}
}

func TestNPC_AreaScoped(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	// The harbormaster is not in the village.
	if _, err := NPC(defs, gs, "quill"); err == nil {
		t.Fatal("expected the harbormaster to be out of reach from the village")
	}

	gs.SetCurrentArea("harbor")
	id, err := NPC(defs, gs, "quill")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "harbor_master" {
		t.Errorf("expected harbor_master, got %q", id)
	}
}

func TestNPC_NoAreaIsEverywhere(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	id, err := NPC(defs, gs, "wanderer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "wanderer" {
		t.Errorf("expected wanderer, got %q", id)
	}
}

func TestNPC_UnderscoreNormalization(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	id, err := NPC(defs, gs, "old miner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "old_miner" {
		t.Errorf("expected old_miner, got %q", id)
	}
}

func TestNPC_Ambiguous(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	_, err := NPC(defs, gs, "old")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected an ambiguity error, got %v", err)
	}
	// Candidates are sorted for a stable prompt.
	if len(amb.Candidates) != 2 || amb.Candidates[0] != "old_miner" || amb.Candidates[1] != "old_scribe" {
		t.Errorf("expected sorted candidates, got %v", amb.Candidates)
	}
}

func TestNPC_NotFound(t *testing.T) {
	defs := testDefs()
	gs := state.New(defs)

	_, err := NPC(defs, gs, "ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if !strings.Contains(nf.Error(), "ghost") {
		t.Errorf("expected the message to name the query, got %q", nf.Error())
	}
}

// --- Enemies ---

func TestEnemy_InstanceSuffixPassesThrough(t *testing.T) {
	defs := testDefs()

	id, err := Enemy(defs, "goblin_3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "goblin_3" {
		t.Errorf("expected the instance id to survive, got %q", id)
	}
}

func TestEnemy_ByDisplayName(t *testing.T) {
	defs := testDefs()

	id, err := Enemy(defs, "troll")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "marsh_troll" {
		t.Errorf("expected marsh_troll, got %q", id)
	}
}

func TestEnemy_SpacedName(t *testing.T) {
	defs := testDefs()

	id, err := Enemy(defs, "marsh troll")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "marsh_troll" {
		t.Errorf("expected marsh_troll, got %q", id)
	}
}

func TestEnemy_Unknown(t *testing.T) {
	defs := testDefs()

	if _, err := Enemy(defs, "dragon"); err == nil {
		t.Error("expected an error for an unknown enemy")
	}
}

// --- Quests ---

func TestQuest_ByID(t *testing.T) {
	defs := testDefs()

	id, err := Quest(defs, "q_hunt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "q_hunt" {
		t.Errorf("expected q_hunt, got %q", id)
	}
}

func TestQuest_ByTitleFragment(t *testing.T) {
	defs := testDefs()

	id, err := Quest(defs, "iron pact")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "q_pact" {
		t.Errorf("expected q_pact, got %q", id)
	}
}

func TestQuest_ByTitleWord(t *testing.T) {
	defs := testDefs()

	id, err := Quest(defs, "goblins")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "q_hunt" {
		t.Errorf("expected q_hunt, got %q", id)
	}
}
