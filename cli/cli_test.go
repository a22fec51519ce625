package cli

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/storage"
	"github.com/mirren/emberfall/types"
)

// testDefs returns minimal game definitions for CLI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title: "Test Game",
			Start: "village",
			Intro: "Smoke rises over the valley.",
		},
		Quests: []types.QuestDef{
			{
				ID:       "q_elder",
				Title:    "Words With the Elder",
				Category: types.CategoryMain,
				Objectives: []types.ObjectiveDef{
					{ID: "talk_elder", Description: "Speak with Elder Maren", Type: "talk", Target: types.TargetSet{"elder"}},
				},
				Rewards: types.RewardDef{Exp: 20, Reputation: map[string]int{"emberguard": 10}},
			},
		},
		Factions: types.FactionConfig{
			Factions: []types.FactionDef{
				{ID: "emberguard", Name: "Emberguard"},
			},
		},
		Dialogues: map[string]types.DialogueDef{
			"elder_intro": {ID: "elder_intro", SpeakerName: "Elder Maren", Lines: []types.LineDef{
				{ID: "hello", Text: "Welcome, traveler.", Next: "ask"},
				{ID: "ask", Text: "Will you help us?", Choices: []types.ChoiceDef{
					{Text: "I will.", Next: "end"},
					{Text: "Not today.", Next: "end"},
				}},
			}},
		},
		NPCs: map[string]types.NPCDef{
			"elder": {ID: "elder", Name: "Elder Maren", Area: "village", Dialogue: "elder_intro"},
		},
		Enemies: map[string]types.EnemyDef{
			"goblin": {ID: "goblin", Name: "Goblin", Health: 1, AttackPower: 1, Defense: 0, ExpReward: 5, GoldReward: 3},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	g := engine.New(testDefs(), zap.NewNop())
	store, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	c := New(g, store)
	var out bytes.Buffer
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func TestCLI_IntroAndStartingArea(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Smoke rises over the valley.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "You are in village.") {
		t.Error("expected starting area in output")
	}
}

func TestCLI_TalkStartsDialogue(t *testing.T) {
	c, out := newTestCLI(t, "talk to the elder\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Elder Maren: Welcome, traveler.") {
		t.Error("expected the first dialogue line in output")
	}
}

func TestCLI_DialogueChoiceFlow(t *testing.T) {
	c, out := newTestCLI(t, "activate q_elder\ntalk elder\ncontinue\n1\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Quest started: Words With the Elder") {
		t.Error("expected quest activation toast")
	}
	if !strings.Contains(output, "Will you help us?") {
		t.Error("expected the choice line in output")
	}
	if !strings.Contains(output, "1. I will.") {
		t.Error("expected numbered choices in output")
	}
	if !strings.Contains(output, "Quest completed: Words With the Elder") {
		t.Error("expected quest completion toast")
	}
	if !strings.Contains(output, "Emberguard reputation +10") {
		t.Error("expected reputation toast from the quest reward")
	}
	if c.Game.Dialogues.Active() {
		t.Error("expected the dialogue to be over")
	}
}

func TestCLI_ChooseWithoutDialogue(t *testing.T) {
	c, out := newTestCLI(t, "choose 1\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "There is no choice to make right now.") {
		t.Error("expected a no-choice message")
	}
}

func TestCLI_QuestJournal(t *testing.T) {
	c, out := newTestCLI(t, "quests\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Available:") {
		t.Error("expected an available section")
	}
	if !strings.Contains(output, "[main] Words With the Elder") {
		t.Error("expected the quest with its category in the journal")
	}
}

func TestCLI_QuestDetail(t *testing.T) {
	c, out := newTestCLI(t, "quest q_elder\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Words With the Elder [main, available]") {
		t.Error("expected title, category and status")
	}
	if !strings.Contains(output, "Speak with Elder Maren (0/1)") {
		t.Error("expected objective progress")
	}
}

func TestCLI_FightVictory(t *testing.T) {
	c, out := newTestCLI(t, "fight goblin\nattack\n/quit\n")
	c.Game.RestoreRNG(42, 0)
	c.Run()

	output := out.String()
	if !strings.Contains(output, "You square off against the Goblin. (1 health)") {
		t.Error("expected the battle opening line")
	}
	if !strings.Contains(output, "The Goblin is defeated!") {
		t.Error("expected the victory line")
	}
	if !strings.Contains(output, "You gain 5 exp.") {
		t.Error("expected the exp line")
	}
	if !strings.Contains(output, "You loot 3 gold.") {
		t.Error("expected the gold line")
	}
}

func TestCLI_BattleBlocksOtherCommands(t *testing.T) {
	c, out := newTestCLI(t, "fight goblin\ntalk elder\nstats\n/quit\n")
	big := c.Defs.Enemies["goblin"]
	big.Health = 1000
	c.Defs.Enemies["goblin"] = big
	c.Game.RestoreRNG(42, 0)
	c.Run()

	output := out.String()
	if !strings.Contains(output, "You are mid-battle.") {
		t.Error("expected non-combat commands to be blocked")
	}
	// Status views stay available.
	if !strings.Contains(output, "Level 1") {
		t.Error("expected stats to work mid-battle")
	}
}

func TestCLI_FactionsView(t *testing.T) {
	c, out := newTestCLI(t, "factions\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Emberguard") {
		t.Error("expected the faction name")
	}
	if !strings.Contains(output, "neutral") {
		t.Error("expected the starting tier")
	}
}

func TestCLI_StatsView(t *testing.T) {
	c, out := newTestCLI(t, "stats\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Health 100/100") {
		t.Error("expected health in stats")
	}
	if !strings.Contains(output, "Area: village") {
		t.Error("expected the current area in stats")
	}
}

func TestCLI_InventoryView(t *testing.T) {
	c, out := newTestCLI(t, "inventory\ntake 2 bitterleaf\ninventory\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Your pack is empty.") {
		t.Error("expected the empty-pack message first")
	}
	if !strings.Contains(output, "Taken: bitterleaf x2.") {
		t.Error("expected the take confirmation")
	}
	if !strings.Contains(output, "bitterleaf x2") {
		t.Error("expected the item in the inventory listing")
	}
}

func TestCLI_GoRequiresUnlock(t *testing.T) {
	c, out := newTestCLI(t, "go to the deep mines\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "You cannot enter deep mines yet.") {
		t.Error("expected locked areas to refuse entry")
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	// Play a bit and save.
	c := New(engine.New(testDefs(), zap.NewNop()), store)
	var out bytes.Buffer
	c.In = strings.NewReader("take torch\n/save test\n/quit\n")
	c.Out = &out
	c.Run()

	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Error("expected save confirmation")
	}

	// Start fresh and load.
	c2 := New(engine.New(testDefs(), zap.NewNop()), store)
	var out2 bytes.Buffer
	c2.In = strings.NewReader("/load test\ninventory\n/quit\n")
	c2.Out = &out2
	c2.Run()

	loadOutput := out2.String()
	if !strings.Contains(loadOutput, "Game loaded from test.") {
		t.Error("expected load confirmation")
	}
	if !strings.Contains(loadOutput, "torch x1") {
		t.Error("expected the restored inventory after loading")
	}
}

func TestCLI_ListSaves(t *testing.T) {
	c, out := newTestCLI(t, "/save alpha\n/saves\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Saves: alpha") {
		t.Error("expected the save slot listing")
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nonexistent\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Load failed: no save named nonexistent.") {
		t.Error("expected load failure message")
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "/save") {
		t.Error("expected /save in help output")
	}
	if !strings.Contains(output, "/load") {
		t.Error("expected /load in help output")
	}
	if !strings.Contains(output, "fight <enemy>") {
		t.Error("expected game commands in help output")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_UnknownVerb(t *testing.T) {
	c, out := newTestCLI(t, "dance\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), `I don't know how to "dance"`) {
		t.Error("expected unknown verb message")
	}
}

func TestCLI_EmptyAndCommentLinesSkipped(t *testing.T) {
	c, out := newTestCLI(t, "\n# a script comment\n/quit\n")
	c.Run()

	if strings.Contains(out.String(), "I don't know how to") {
		t.Error("empty and comment lines should be silently skipped")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, out := newTestCLI(t, "stats\nagain\n/quit\n")
	c.Run()

	count := strings.Count(out.String(), "Level 1")
	if count != 2 {
		t.Errorf("expected stats twice (stats + again), got %d", count)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}
