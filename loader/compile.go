package loader

import (
	"fmt"

	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds one authored definition before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStringSlice returns an array field as a string slice, or nil.
func getStringSlice(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	arr.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 mean an array.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToIntMap converts a Lua table to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(n)
			}
		}
	})
	return m
}

// compile converts all collected Lua definitions into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Dialogues: map[string]types.DialogueDef{},
		NPCs:      map[string]types.NPCDef{},
		Enemies:   map[string]types.EnemyDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	// Quests keep authoring order within each category; the categories
	// land in document order: main, then faction, then side.
	quests := make([]types.QuestDef, 0, len(coll.quests))
	for _, raw := range coll.quests {
		q, err := compileQuest(raw)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	order := []types.QuestCategory{types.CategoryMain, types.CategoryFaction, types.CategorySide}
	for _, cat := range order {
		for _, q := range quests {
			if q.Category == cat {
				defs.Quests = append(defs.Quests, q)
			}
		}
	}

	for _, raw := range coll.factions {
		defs.Factions.Factions = append(defs.Factions.Factions, compileFaction(raw))
	}
	defs.Factions.ReputationThresholds = tableToIntMap(coll.thresholds)
	defs.Factions.ReputationEffects = compileTierEffects(coll.effects)

	for _, raw := range coll.dialogues {
		if _, dup := defs.Dialogues[raw.id]; dup {
			return nil, fmt.Errorf("duplicate dialogue id %q", raw.id)
		}
		defs.Dialogues[raw.id] = compileDialogue(raw)
	}

	for _, raw := range coll.npcs {
		if _, dup := defs.NPCs[raw.id]; dup {
			return nil, fmt.Errorf("duplicate npc id %q", raw.id)
		}
		defs.NPCs[raw.id] = compileNPC(raw)
	}

	for _, raw := range coll.enemies {
		if _, dup := defs.Enemies[raw.id]; dup {
			return nil, fmt.Errorf("duplicate enemy id %q", raw.id)
		}
		defs.Enemies[raw.id] = compileEnemy(raw)
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileQuest(raw rawDef) (types.QuestDef, error) {
	tbl := raw.table
	q := types.QuestDef{
		ID:                 raw.id,
		Title:              getString(tbl, "title"),
		Description:        getString(tbl, "description"),
		Chapter:            getInt(tbl, "chapter"),
		Type:               types.QuestType(getString(tbl, "type")),
		Faction:            getString(tbl, "faction"),
		Giver:              getString(tbl, "giver"),
		Prerequisites:      getStringSlice(tbl, "prerequisites"),
		CompletionDialogue: getString(tbl, "completionDialogue"),
	}

	switch cat := getString(tbl, "category"); cat {
	case "":
		q.Category = types.CategorySide
	case string(types.CategoryMain), string(types.CategoryFaction), string(types.CategorySide):
		q.Category = types.QuestCategory(cat)
	default:
		return types.QuestDef{}, fmt.Errorf("quest %q has unknown category %q", raw.id, cat)
	}

	if objs := getTable(tbl, "objectives"); objs != nil {
		objs.ForEach(func(k, v lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			if objTbl, ok := v.(*lua.LTable); ok {
				q.Objectives = append(q.Objectives, compileObjective(objTbl))
			}
		})
	}
	if rew := getTable(tbl, "rewards"); rew != nil {
		q.Rewards = compileRewards(rew)
	}
	return q, nil
}

func compileObjective(tbl *lua.LTable) types.ObjectiveDef {
	return types.ObjectiveDef{
		ID:          getString(tbl, "id"),
		Description: getString(tbl, "description"),
		Type:        getString(tbl, "type"),
		Target:      compileTarget(tbl.RawGetString("target")),
		Required:    getInt(tbl, "required"),
	}
}

// compileTarget accepts a single id or an array of acceptable ids.
func compileTarget(v lua.LValue) types.TargetSet {
	switch val := v.(type) {
	case lua.LString:
		return types.TargetSet{string(val)}
	case *lua.LTable:
		var set types.TargetSet
		val.ForEach(func(k, elem lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			if s, ok := elem.(lua.LString); ok {
				set = append(set, string(s))
			}
		})
		return set
	default:
		return nil
	}
}

func compileRewards(tbl *lua.LTable) types.RewardDef {
	return types.RewardDef{
		Exp:        getInt(tbl, "exp"),
		Gold:       getInt(tbl, "gold"),
		Items:      tableToIntMap(getTable(tbl, "items")),
		Reputation: tableToIntMap(getTable(tbl, "reputation")),
		Unlocks:    getStringSlice(tbl, "unlocks"),
	}
}

func compileFaction(raw rawDef) types.FactionDef {
	tbl := raw.table
	return types.FactionDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Leader:      getString(tbl, "leader"),
		Description: getString(tbl, "description"),
		Relations:   tableToIntMap(getTable(tbl, "relations")),
	}
}

func compileTierEffects(tbl *lua.LTable) map[string]types.TierEffects {
	if tbl == nil {
		return nil
	}
	m := map[string]types.TierEffects{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		m[string(ks)] = types.TierEffects{
			ShopDiscount:  getNumber(row, "shopDiscount"),
			AreaAccess:    getString(row, "areaAccess"),
			BountyHunters: getBool(row, "bountyHunters", false),
		}
	})
	return m
}

func compileDialogue(raw rawDef) types.DialogueDef {
	tbl := raw.table
	d := types.DialogueDef{
		ID:          raw.id,
		Speaker:     getString(tbl, "speaker"),
		SpeakerName: getString(tbl, "speakerName"),
		Portrait:    getString(tbl, "portrait"),
	}
	if lines := getTable(tbl, "lines"); lines != nil {
		lines.ForEach(func(k, v lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			if lineTbl, ok := v.(*lua.LTable); ok {
				d.Lines = append(d.Lines, compileLine(lineTbl))
			}
		})
	}
	return d
}

func compileLine(tbl *lua.LTable) types.LineDef {
	line := types.LineDef{
		ID:          getString(tbl, "id"),
		Text:        getString(tbl, "text"),
		Speaker:     getString(tbl, "speaker"),
		SpeakerName: getString(tbl, "speakerName"),
		Portrait:    getString(tbl, "portrait"),
		Next:        getString(tbl, "next"),
		Effects:     compileEffects(getTable(tbl, "effects")),
	}
	if choices := getTable(tbl, "choices"); choices != nil {
		choices.ForEach(func(k, v lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			if choiceTbl, ok := v.(*lua.LTable); ok {
				line.Choices = append(line.Choices, compileChoice(choiceTbl))
			}
		})
	}
	return line
}

func compileChoice(tbl *lua.LTable) types.ChoiceDef {
	return types.ChoiceDef{
		Text:      getString(tbl, "text"),
		Next:      getString(tbl, "next"),
		Condition: getString(tbl, "condition"),
		Effects:   compileEffects(getTable(tbl, "effects")),
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	if tbl == nil {
		return nil
	}
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	return types.Effect{
		Kind:      types.EffectKind(getString(tbl, "type")),
		Faction:   getString(tbl, "faction"),
		Trait:     getString(tbl, "trait"),
		Quest:     getString(tbl, "quest"),
		Objective: getString(tbl, "objective"),
		Item:      getString(tbl, "item"),
		Key:       getString(tbl, "key"),
		Value:     toGoValue(tbl.RawGetString("value")),
		Minigame:  getString(tbl, "minigame"),
		Amount:    getInt(tbl, "amount"),
	}
}

func compileNPC(raw rawDef) types.NPCDef {
	tbl := raw.table
	return types.NPCDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Area:      getString(tbl, "area"),
		Dialogue:  getString(tbl, "dialogue"),
		Dialogues: tableToStringMap(getTable(tbl, "dialogues")),
	}
}

func compileEnemy(raw rawDef) types.EnemyDef {
	tbl := raw.table
	return types.EnemyDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Health:      getInt(tbl, "health"),
		AttackPower: getInt(tbl, "attackPower"),
		Defense:     getInt(tbl, "defense"),
		Behavior:    tableToIntMap(getTable(tbl, "behavior")),
		ExpReward:   getInt(tbl, "expReward"),
		GoldReward:  getInt(tbl, "goldReward"),
		Boss:        getBool(tbl, "boss", false),
	}
}
