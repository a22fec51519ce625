package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the Lua constructors and effect helpers as
// globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Quest "id" { ... } is curried: Quest("id") returns a function
	// that takes the definition table. Same shape for the rest.
	L.SetGlobal("Quest", curried(L, &coll.quests))
	L.SetGlobal("Faction", curried(L, &coll.factions))
	L.SetGlobal("Dialogue", curried(L, &coll.dialogues))
	L.SetGlobal("NPC", curried(L, &coll.npcs))
	L.SetGlobal("Enemy", curried(L, &coll.enemies))

	// ReputationThresholds { friendly = 30, allied = 60, ... }
	L.SetGlobal("ReputationThresholds", L.NewFunction(func(L *lua.LState) int {
		coll.thresholds = L.CheckTable(1)
		return 0
	}))

	// ReputationEffects { friendly = { shopDiscount = 0.05 }, ... }
	L.SetGlobal("ReputationEffects", L.NewFunction(func(L *lua.LState) int {
		coll.effects = L.CheckTable(1)
		return 0
	}))
}

func curried(L *lua.LState, dst *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	})
}

// registerEffectHelpers registers sugar for the effect vocabulary. Each
// helper returns a table shaped like the JSON effect object, so authors
// can also write raw tables when they prefer.
func registerEffectHelpers(L *lua.LState) {
	// FactionRep("emberguard", 10)
	L.SetGlobal("FactionRep", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("factionRep"))
		tbl.RawSetString("faction", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Personality("bold", 1)
	L.SetGlobal("Personality", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("personality"))
		tbl.RawSetString("trait", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Objective("q_vengeance", "find_the_blade")
	L.SetGlobal("Objective", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("objective"))
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("objective", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	// AddItem("herb", 2) with the count defaulting to 1.
	L.SetGlobal("AddItem", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("addItem"))
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", optionalCount(L))
		L.Push(tbl)
		return 1
	}))

	// RemoveItem("herb", 2) with the count defaulting to 1.
	L.SetGlobal("RemoveItem", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("removeItem"))
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", optionalCount(L))
		L.Push(tbl)
		return 1
	}))

	// Gold(25)
	L.SetGlobal("Gold", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("gold"))
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	// StartMinigame("lockpick")
	L.SetGlobal("StartMinigame", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("startMinigame"))
		tbl.RawSetString("minigame", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// Flag("met_elder", true)
	L.SetGlobal("Flag", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag"))
		tbl.RawSetString("key", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", L.Get(2))
		L.Push(tbl)
		return 1
	}))

	// Morality(-5)
	L.SetGlobal("Morality", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("morality"))
		tbl.RawSetString("amount", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))
}

// optionalCount reads argument 2 as an item count, defaulting to 1.
func optionalCount(L *lua.LState) lua.LNumber {
	if L.GetTop() >= 2 {
		return L.CheckNumber(2)
	}
	return lua.LNumber(1)
}
