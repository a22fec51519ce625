package tui

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/storage"
	"github.com/mirren/emberfall/types"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"village", "Village"},
		{"ember_sanctum", "Ember Sanctum"},
		{"deep_mines", "Deep Mines"},
		{"old_mill", "Old Mill"},
		{"hollow_kings_court", "Hollow Kings Court"},
	}
	for _, tt := range tests {
		got := displayName(tt.id)
		if got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[Quest started: The First Embers]", kindSystem},
		{"[Game saved to quicksave.]", kindSystem},
		{"  1. I will.", kindChoice},
		{"  12. A longer numbered option.", kindChoice},
		{"Elder Maren: Welcome, traveler.", kindSpeech},
		{"Ruya: The hills are thick with bitterleaf.", kindSpeech},
		{"You cannot enter deep mines yet.", kindError},
		{"There is no choice to make right now.", kindError},
		{"No such choice.", kindError},
		{`I don't know how to "dance". Type /help for commands.`, kindError},
		{"You are mid-battle. Try: attack, strike, defend, flee.", kindError},
		{"You travel to village.", kindNarrative},
		{"Area: village", kindNarrative},      // stat label, not a speaker
		{"Taken: bitterleaf x2.", kindNarrative},
		{"Morality: 50", kindNarrative},
		{"  bitterleaf x2", kindNarrative},    // inventory listing
		{"  [x] Speak with Elder Maren (1/1)", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Smoke rises over the valley as the last embers of the old fire fade.", 30,
			"Smoke rises over the valley as\nthe last embers of the old\nfire fade."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

// --- Command history ---

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("talk elder")
	h.Push("go market")
	h.Push("take torch")

	prev, ok := h.Prev()
	if !ok || prev != "take torch" {
		t.Errorf("expected 'take torch', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "go market" {
		t.Errorf("expected 'go market', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "talk elder" {
		t.Errorf("expected 'talk elder', got %q (ok=%v)", prev, ok)
	}

	// At the oldest entry, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "talk elder" {
		t.Errorf("expected 'talk elder' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("talk elder")
	h.Push("go market")

	h.Prev() // "go market"
	h.Prev() // "talk elder"

	next, ok := h.Next()
	if !ok || next != "go market" {
		t.Errorf("expected 'go market', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	if ok {
		t.Error("expected false on empty history")
	}
	_, ok = h.Next()
	if ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("quests")
	h.Push("quests") // skipped
	h.Push("quests") // skipped

	if len(h.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(h.entries))
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("talk elder")
	h.Push("go market")

	h.Prev() // "go market"
	h.ResetCursor()

	// After reset, Prev starts from the end again.
	prev, ok := h.Prev()
	if !ok || prev != "go market" {
		t.Errorf("expected 'go market' after reset, got %q", prev)
	}
}

// --- Model over a live game ---

// testDefs returns minimal game definitions for TUI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:   "Test Game",
			Version: "1.0",
			Start:   "village",
			Intro:   "Smoke rises over the valley.",
		},
		Quests: []types.QuestDef{
			{
				ID:       "q_elder",
				Title:    "Words With the Elder",
				Category: types.CategoryMain,
				Objectives: []types.ObjectiveDef{
					{ID: "talk_elder", Description: "Speak with Elder Maren", Type: "talk", Target: types.TargetSet{"elder"}},
				},
				Rewards: types.RewardDef{Exp: 20},
			},
		},
		Dialogues: map[string]types.DialogueDef{
			"elder_intro": {ID: "elder_intro", SpeakerName: "Elder Maren", Lines: []types.LineDef{
				{ID: "hello", Text: "Welcome, traveler.", Next: "end"},
			}},
		},
		NPCs: map[string]types.NPCDef{
			"elder": {ID: "elder", Name: "Elder Maren", Area: "village", Dialogue: "elder_intro"},
		},
		Enemies: map[string]types.EnemyDef{
			"goblin": {ID: "goblin", Name: "Goblin", Health: 30, AttackPower: 1, ExpReward: 5, GoldReward: 3},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	g := engine.New(testDefs(), zap.NewNop())
	store, err := storage.NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return New(g, store)
}

func TestExec_GameCommand(t *testing.T) {
	m := newTestModel(t)

	lines, quit := m.exec("talk elder")
	if quit {
		t.Error("talk should not quit")
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Elder Maren: Welcome, traveler.") {
		t.Errorf("expected dialogue line, got %v", lines)
	}
}

func TestExec_OutputClearedBetweenCommands(t *testing.T) {
	m := newTestModel(t)

	m.exec("stats")
	lines, _ := m.exec("inventory")

	joined := strings.Join(lines, "\n")
	if strings.Contains(joined, "Level 1") {
		t.Errorf("expected previous stats output to be gone, got %v", lines)
	}
	if !strings.Contains(joined, "Your pack is empty.") {
		t.Errorf("expected inventory output, got %v", lines)
	}
}

func TestExec_MetaSave(t *testing.T) {
	m := newTestModel(t)

	lines, quit := m.exec("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "Game saved to test.") {
		t.Errorf("expected save confirmation, got %v", lines)
	}
}

func TestExec_MetaQuit(t *testing.T) {
	m := newTestModel(t)

	lines, quit := m.exec("/quit")
	if !quit {
		t.Error("expected quit=true for /quit")
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "Goodbye.") {
		t.Errorf("expected goodbye message, got %v", lines)
	}
}

func TestExec_LoadNonexistent(t *testing.T) {
	m := newTestModel(t)

	lines, quit := m.exec("/load nope")
	if quit {
		t.Error("load should not quit")
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "Load failed") {
		t.Errorf("expected load failure, got %v", lines)
	}
}

func TestExec_Help(t *testing.T) {
	m := newTestModel(t)

	lines, _ := m.exec("/help")
	joined := strings.Join(lines, "\n")
	for _, expected := range []string{"/save", "/load", "/quit", "talk", "quests"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestStatusBar(t *testing.T) {
	m := newTestModel(t)
	m.width = 80

	bar := m.renderStatusBar()
	for _, expected := range []string{"Village", "HP 100/100", "Gold 0", "Lv 1", "Quests: 0"} {
		if !strings.Contains(bar, expected) {
			t.Errorf("expected %q in status bar, got %q", expected, bar)
		}
	}
}

func TestStatusBar_ActiveQuestCount(t *testing.T) {
	m := newTestModel(t)
	m.width = 80

	m.exec("activate q_elder")
	bar := m.renderStatusBar()
	if !strings.Contains(bar, "Quests: 1") {
		t.Errorf("expected active quest count in status bar, got %q", bar)
	}
}

func TestStatusBar_Battle(t *testing.T) {
	m := newTestModel(t)
	m.width = 80

	m.exec("fight goblin")
	bar := m.renderStatusBar()
	if !strings.Contains(bar, "Fighting Goblin (30)") {
		t.Errorf("expected battle readout in status bar, got %q", bar)
	}
}
