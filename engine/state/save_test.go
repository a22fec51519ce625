package state

import (
	"reflect"
	"testing"

	"github.com/mirren/emberfall/engine/save"
)

func populatedState() *GameState {
	g := New(testDefs())
	g.SetPosition(128.5, 64)
	g.SetCurrentArea("harbor")
	g.AddExp(250) // level 3
	g.Damage(40)
	g.UseEnergy(20)
	g.AddGold(250)
	g.UnlockAbility("doubleJump")
	g.AddItem("potion", 2)
	g.AddItem("iron_key", 1)
	g.Equip("weapon", "iron_sword")
	g.LearnSkill("parry")
	g.MarkQuestActive("q1")
	g.MarkQuestActive("q2")
	g.MarkQuestCompleted("q1")
	g.SetObjectiveProgress("q2", "kill_goblins", 2)
	g.SetFactionRep("ironpact", 45)
	g.SetFactionRep("veil", -30)
	g.UnlockArea("harbor")
	g.DiscoverSecret("hidden_cove")
	g.RecordBossDefeat("marsh_troll")
	g.SetNPCState("elder", "questdone")
	g.SetFlag("met_elder", true)
	g.SetFlag("chapter", 2)
	g.AdjustTrait("warm", 3)
	g.AdjustMorality(20)
	return g
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	g := populatedState()

	doc := g.SaveData()
	data, err := save.Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := save.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	loaded := New(testDefs())
	loaded.LoadSave(decoded)

	if x, y := loaded.Position(); x != 128.5 || y != 64 {
		t.Errorf("expected position (128.5, 64), got (%v, %v)", x, y)
	}
	if loaded.CurrentArea() != "harbor" {
		t.Errorf("expected area harbor, got %q", loaded.CurrentArea())
	}
	if loaded.Level() != 3 || loaded.Exp() != 0 {
		t.Errorf("expected level 3 exp 0, got level %d exp %d", loaded.Level(), loaded.Exp())
	}
	if loaded.Health() != 80 || loaded.MaxHealth() != 120 {
		t.Errorf("expected health 80/120, got %d/%d", loaded.Health(), loaded.MaxHealth())
	}
	if loaded.Energy() != 30 || loaded.MaxEnergy() != 50 {
		t.Errorf("expected energy 30/50, got %d/%d", loaded.Energy(), loaded.MaxEnergy())
	}
	if loaded.AttackPower() != 14 || loaded.Defense() != 7 {
		t.Errorf("expected attack 14 defense 7, got %d/%d", loaded.AttackPower(), loaded.Defense())
	}
	if loaded.Gold() != 250 {
		t.Errorf("expected gold 250, got %d", loaded.Gold())
	}
	if !loaded.HasAbility("doubleJump") {
		t.Error("expected doubleJump ability to survive")
	}
	if !reflect.DeepEqual(loaded.Inventory(), map[string]int{"potion": 2, "iron_key": 1}) {
		t.Errorf("unexpected inventory %v", loaded.Inventory())
	}
	if loaded.Equipped("weapon") != "iron_sword" {
		t.Errorf("expected iron_sword equipped, got %q", loaded.Equipped("weapon"))
	}
	if !loaded.HasSkill("parry") {
		t.Error("expected parry skill to survive")
	}
	if !loaded.QuestActive("q2") || loaded.QuestActive("q1") {
		t.Errorf("expected only q2 active, got %v", loaded.ActiveQuests())
	}
	if !loaded.QuestCompleted("q1") {
		t.Error("expected q1 completed")
	}
	if loaded.ObjectiveProgress("q2", "kill_goblins") != 2 {
		t.Errorf("expected objective count 2, got %d", loaded.ObjectiveProgress("q2", "kill_goblins"))
	}
	if loaded.FactionRep("ironpact") != 45 || loaded.FactionRep("veil") != -30 {
		t.Errorf("unexpected reputations %v", loaded.FactionReps())
	}
	if !loaded.AreaUnlocked("harbor") {
		t.Error("expected harbor unlocked")
	}
	if !loaded.SecretDiscovered("hidden_cove") {
		t.Error("expected hidden_cove discovered")
	}
	if !loaded.BossDefeated("marsh_troll") {
		t.Error("expected marsh_troll defeated")
	}
	if loaded.NPCState("elder") != "questdone" {
		t.Errorf("expected elder state questdone, got %q", loaded.NPCState("elder"))
	}
	if v, _ := loaded.Flag("met_elder"); v != true {
		t.Errorf("expected met_elder true, got %v", v)
	}
	if v, _ := loaded.Flag("chapter"); v != float64(2) {
		t.Errorf("expected chapter float64(2) after round-trip, got %T %v", v, v)
	}
	if loaded.Trait("warm") != 3 {
		t.Errorf("expected trait warm 3, got %d", loaded.Trait("warm"))
	}
	if loaded.Morality() != 70 {
		t.Errorf("expected morality 70, got %d", loaded.Morality())
	}
}

func TestSaveData_InventorySortedAndVersioned(t *testing.T) {
	g := New(testDefs())
	g.AddItem("zeta_root", 1)
	g.AddItem("amber_shard", 3)

	doc := g.SaveData()

	if doc.Version != save.Version {
		t.Errorf("expected version %d, got %d", save.Version, doc.Version)
	}
	if len(doc.Player.Inventory) != 2 {
		t.Fatalf("expected 2 inventory entries, got %d", len(doc.Player.Inventory))
	}
	if doc.Player.Inventory[0].Item != "amber_shard" || doc.Player.Inventory[1].Item != "zeta_root" {
		t.Errorf("expected inventory sorted by item id, got %v", doc.Player.Inventory)
	}
	if doc.Morality == nil {
		t.Fatal("expected morality section in save data")
	}
	if doc.SavedAt.IsZero() {
		t.Error("expected savedAt timestamp")
	}
}

func TestLoadSave_ReplacesPriorState(t *testing.T) {
	fresh := New(testDefs())
	fresh.AddItem("old_item", 5)
	fresh.SetFlag("stale", true)
	fresh.LoadSave(&save.Document{Version: save.Version})

	if fresh.ItemCount("old_item") != 0 {
		t.Errorf("expected inventory wiped by load, got %v", fresh.Inventory())
	}
	if _, ok := fresh.Flag("stale"); ok {
		t.Error("expected flags wiped by load")
	}
	if fresh.CurrentArea() != "village" {
		t.Errorf("expected start area after empty load, got %q", fresh.CurrentArea())
	}
}

func TestLoadSave_OldDocumentDefaults(t *testing.T) {
	doc, err := save.Decode([]byte(`{"version":1,"player":{"maxHealth":90,"health":60}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	g := New(testDefs())
	g.LoadSave(doc)

	if g.Health() != 60 || g.MaxHealth() != 90 {
		t.Errorf("expected health 60/90, got %d/%d", g.Health(), g.MaxHealth())
	}
	// Sections the document never had keep new-game defaults.
	if g.Morality() != 50 {
		t.Errorf("expected default morality 50, got %d", g.Morality())
	}
	if g.MaxEnergy() != 50 {
		t.Errorf("expected default maxEnergy 50, got %d", g.MaxEnergy())
	}
	if g.Level() != 1 {
		t.Errorf("expected default level 1, got %d", g.Level())
	}
}

func TestLoadSave_ClampsCorruptValues(t *testing.T) {
	m := 300
	doc := &save.Document{
		Version: save.Version,
		Player: save.Player{
			MaxHealth: 100,
			Health:    999,
			MaxEnergy: 50,
			Energy:    -20,
		},
		Morality: &m,
	}

	g := New(testDefs())
	g.LoadSave(doc)

	if g.Health() != 100 {
		t.Errorf("expected health clamped to 100, got %d", g.Health())
	}
	if g.Energy() != 0 {
		t.Errorf("expected energy clamped to 0, got %d", g.Energy())
	}
	if g.Morality() != 100 {
		t.Errorf("expected morality clamped to 100, got %d", g.Morality())
	}
}

func TestLoadSave_PlayTimeResumes(t *testing.T) {
	doc := &save.Document{Version: save.Version, PlayTime: 345.5}

	g := New(testDefs())
	g.LoadSave(doc)

	if got := g.PlayTime(); got < 345.5 || got > 346.5 {
		t.Errorf("expected playTime to resume near 345.5, got %v", got)
	}
}
