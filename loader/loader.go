// Package loader reads game content into immutable definitions. Content
// ships either as JSON documents (game.json, quests.json, factions.json,
// dialogues.json, npcs.json, enemies.json) or as Lua scripts using the
// authoring API. Both paths produce the same state.Defs and run through
// the same validator. The Lua VM is discarded after loading.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game       *lua.LTable
	quests     []rawDef
	factions   []rawDef
	dialogues  []rawDef
	npcs       []rawDef
	enemies    []rawDef
	thresholds *lua.LTable
	effects    *lua.LTable
}

// Load reads content from dir, compiles it into game definitions,
// validates references, and returns the immutable Defs. A directory
// holding .lua files uses the Lua authoring front end; otherwise the
// JSON documents are read.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	jsonSeen := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name(), ".lua"):
			luaFiles = append(luaFiles, e.Name())
		case strings.HasSuffix(e.Name(), ".json"):
			jsonSeen = true
		}
	}

	var defs *state.Defs
	switch {
	case len(luaFiles) > 0:
		defs, err = loadLua(dir, luaFiles)
	case jsonSeen:
		defs, err = loadJSON(dir)
	default:
		return nil, fmt.Errorf("no content documents found in %s", dir)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// questDocument is the quests.json layout. Quests are grouped by
// category; declared order is significant within and across sections.
type questDocument struct {
	Main    []types.QuestDef `json:"main"`
	Faction []types.QuestDef `json:"faction"`
	Side    []types.QuestDef `json:"side"`
}

func loadJSON(dir string) (*state.Defs, error) {
	defs := &state.Defs{
		Dialogues: map[string]types.DialogueDef{},
		NPCs:      map[string]types.NPCDef{},
		Enemies:   map[string]types.EnemyDef{},
	}

	found, err := readDoc(dir, "game.json", &defs.Game)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no game.json found in %s", dir)
	}

	var quests questDocument
	if _, err := readDoc(dir, "quests.json", &quests); err != nil {
		return nil, err
	}
	defs.Quests = appendQuests(defs.Quests, quests.Main, types.CategoryMain)
	defs.Quests = appendQuests(defs.Quests, quests.Faction, types.CategoryFaction)
	defs.Quests = appendQuests(defs.Quests, quests.Side, types.CategorySide)

	if _, err := readDoc(dir, "factions.json", &defs.Factions); err != nil {
		return nil, err
	}

	var dialogues map[string]types.DialogueDef
	if _, err := readDoc(dir, "dialogues.json", &dialogues); err != nil {
		return nil, err
	}
	for id, d := range dialogues {
		d.ID = id
		defs.Dialogues[id] = d
	}

	var npcs []types.NPCDef
	if _, err := readDoc(dir, "npcs.json", &npcs); err != nil {
		return nil, err
	}
	for _, n := range npcs {
		if _, dup := defs.NPCs[n.ID]; dup {
			return nil, fmt.Errorf("duplicate npc id %q in npcs.json", n.ID)
		}
		defs.NPCs[n.ID] = n
	}

	var enemies []types.EnemyDef
	if _, err := readDoc(dir, "enemies.json", &enemies); err != nil {
		return nil, err
	}
	for _, e := range enemies {
		if _, dup := defs.Enemies[e.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy id %q in enemies.json", e.ID)
		}
		defs.Enemies[e.ID] = e
	}

	return defs, nil
}

func appendQuests(dst, src []types.QuestDef, cat types.QuestCategory) []types.QuestDef {
	for _, q := range src {
		q.Category = cat
		dst = append(dst, q)
	}
	return dst
}

// readDoc reads and parses one JSON document. A missing file is not an
// error; the bool reports whether the document was present.
func readDoc(dir, name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}

func loadLua(dir string, files []string) (*state.Defs, error) {
	files = sortedLuaFiles(files)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game content: %w", err)
	}
	return defs, nil
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically, so definition order is stable across runs.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
