// Package cli provides the plain terminal front end: line-based I/O,
// command dispatch, and meta-command handling. It is script-friendly:
// input may come from a file, comment lines starting with '#' are
// skipped, and all output is plain text.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mirren/emberfall/engine"
	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/parser"
	"github.com/mirren/emberfall/engine/quest"
	"github.com/mirren/emberfall/engine/resolve"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/storage"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Game      *engine.Game
	Defs      *state.Defs
	Store     storage.Store
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given game and save store. The event
// subscriptions print through whatever Out holds at publish time, so
// tests may swap In and Out after construction.
func New(g *engine.Game, store storage.Store) *CLI {
	c := &CLI{
		Game:  g,
		Defs:  g.Defs,
		Store: store,
		In:    os.Stdin,
		Out:   os.Stdout,
	}
	c.subscribe()
	return c
}

// subscribe hooks the notification events the player should see.
func (c *CLI) subscribe() {
	bus := c.Game.Bus

	bus.Subscribe(events.KindDialogueLine, func(e events.Event) {
		line := e.(events.DialogueLine)
		speaker := line.SpeakerName
		if speaker == "" {
			speaker = line.Speaker
		}
		if speaker != "" {
			c.printLine(speaker + ": " + line.Text)
		} else {
			c.printLine(line.Text)
		}
		for _, ch := range line.Choices {
			c.printLine(fmt.Sprintf("  %d. %s", ch.Index+1, ch.Text))
		}
	})

	bus.Subscribe(events.KindQuestAvailable, func(e events.Event) {
		q := e.(events.QuestAvailable)
		c.printSystem("New quest available: " + c.questTitle(q.Quest))
	})
	bus.Subscribe(events.KindQuestActivated, func(e events.Event) {
		q := e.(events.QuestActivated)
		c.printSystem("Quest started: " + c.questTitle(q.Quest))
	})
	bus.Subscribe(events.KindQuestCompleted, func(e events.Event) {
		q := e.(events.QuestCompleted)
		c.printSystem("Quest completed: " + c.questTitle(q.Quest))
	})

	bus.Subscribe(events.KindObjectiveUpdated, func(e events.Event) {
		u := e.(events.ObjectiveUpdated)
		if u.Current < u.Required {
			c.printSystem(fmt.Sprintf("%s: %d/%d", c.objectiveDesc(u.Quest, u.Objective), u.Current, u.Required))
		}
	})
	bus.Subscribe(events.KindObjectiveComplete, func(e events.Event) {
		o := e.(events.ObjectiveComplete)
		c.printSystem("Objective complete: " + c.objectiveDesc(o.Quest, o.Objective))
	})

	bus.Subscribe(events.KindRepChanged, func(e events.Event) {
		r := e.(events.RepChanged)
		c.printSystem(fmt.Sprintf("%s reputation %+d (now %d)", c.factionName(r.Faction), r.New-r.Old, r.New))
	})
	bus.Subscribe(events.KindRelationChanged, func(e events.Event) {
		r := e.(events.RelationChanged)
		c.printSystem(fmt.Sprintf("The %s now consider you %s", c.factionName(r.Faction), r.New))
	})

	bus.Subscribe(events.KindMinigameStarted, func(e events.Event) {
		m := e.(events.MinigameStarted)
		c.printSystem(fmt.Sprintf("Minigame started: %s. Report success with: minigame %s done", m.Minigame, m.Minigame))
	})
}

// Run starts the game loop. It shows the intro, names the starting
// area, then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	if c.Defs.Game.Title != "" {
		c.printLine(c.Defs.Game.Title)
		c.printLine("")
	}
	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}
	c.printLine("You are in " + prettyID(c.Game.State.CurrentArea()) + ".")

	scanner := bufio.NewScanner(c.In)
	for {
		if c.Game.GameOver() {
			c.printLine("")
			c.printLine("Your story ends here.")
			return
		}

		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}
		if c.Exec(input) {
			return
		}
	}
}

// Exec processes a single line of player input: meta-commands, the
// again/g repeat, then normal command dispatch. Empty lines and '#'
// comments are ignored. It reports whether the player asked to quit.
func (c *CLI) Exec(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}

	// Meta-commands start with '/'.
	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}

	// "again" / "g" repeats the last game command.
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if c.lastCmd == "" {
			c.printLine("Nothing to repeat.")
			return false
		}
		input = c.lastCmd
	} else {
		c.lastCmd = input
	}

	c.dispatch(input)
	return false
}

// dispatch routes one game command.
func (c *CLI) dispatch(input string) {
	cmd := parser.Parse(input)

	if b := c.Game.Battle(); b != nil {
		if c.battleTurn(b, cmd.Verb) {
			return
		}
	}

	switch cmd.Verb {
	case "talk":
		c.cmdTalk(cmd.Object)
	case "go":
		c.cmdGo(cmd.Object)
	case "take":
		c.cmdTake(cmd.Object)
	case "interact":
		c.cmdInteract(cmd.Object)
	case "fight":
		c.cmdFight(cmd.Object)
	case "attack", "strike", "defend", "flee":
		c.printLine("There is nothing to fight right now.")
	case "choose":
		c.cmdChoose(cmd.Object)
	case "continue":
		c.cmdContinue()
	case "quests":
		c.cmdQuests()
	case "quest":
		c.cmdQuestDetail(cmd.Object)
	case "activate":
		c.cmdActivate(cmd.Object)
	case "factions":
		c.cmdFactions()
	case "stats":
		c.cmdStats()
	case "inventory":
		c.cmdInventory()
	case "minigame":
		c.cmdMinigame(cmd.Object)
	default:
		c.printLine(fmt.Sprintf("I don't know how to %q. Type /help for commands.", cmd.Verb))
	}
}

// battleTurn handles a command while an encounter runs. Status views
// fall through to the normal dispatch; everything except combat verbs
// is blocked.
func (c *CLI) battleTurn(b *engine.Battle, verb string) bool {
	switch verb {
	case "attack":
		c.printLines(b.Attack())
	case "strike":
		c.printLines(b.Strike())
	case "defend":
		c.printLines(b.Defend())
	case "flee":
		c.printLines(b.Flee())
	case "stats", "inventory", "quests", "quest", "factions":
		return false
	default:
		c.printLine("You are mid-battle. Try: attack, strike, defend, flee.")
	}
	return true
}

// --- Game commands ---

func (c *CLI) cmdTalk(name string) {
	if name == "" {
		c.printLine("Talk to whom?")
		return
	}
	id, err := resolve.NPC(c.Defs, c.Game.State, name)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	c.Game.TalkTo(id)
}

func (c *CLI) cmdGo(area string) {
	if area == "" {
		c.printLine("Go where?")
		return
	}
	id := strings.ReplaceAll(strings.ToLower(area), " ", "_")
	if !c.Game.EnterArea(id) {
		c.printLine("You cannot enter " + prettyID(id) + " yet.")
		return
	}
	c.printLine("You travel to " + prettyID(id) + ".")
}

func (c *CLI) cmdTake(object string) {
	if object == "" {
		c.printLine("Take what?")
		return
	}
	count := 1
	fields := strings.Fields(object)
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			count = n
			object = strings.Join(fields[1:], " ")
		}
	}
	item := strings.ReplaceAll(object, " ", "_")
	c.Game.CollectItem(item, count)
	if count > 1 {
		c.printLine(fmt.Sprintf("Taken: %s x%d.", prettyID(item), count))
	} else {
		c.printLine("Taken: " + prettyID(item) + ".")
	}
}

func (c *CLI) cmdInteract(object string) {
	if object == "" {
		c.printLine("Interact with what?")
		return
	}
	id := strings.ReplaceAll(object, " ", "_")
	c.Game.Interact(id)
	c.printLine("You interact with the " + prettyID(id) + ".")
}

func (c *CLI) cmdFight(name string) {
	if name == "" {
		c.printLine("Fight what?")
		return
	}
	id, err := resolve.Enemy(c.Defs, name)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	b, err := c.Game.StartBattle(id)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	c.printLine(fmt.Sprintf("You square off against the %s. (%d health)", c.enemyName(id), b.EnemyHealth()))
	c.printLine("Your move: attack, strike, defend, or flee.")
}

func (c *CLI) cmdChoose(arg string) {
	if !c.Game.Dialogues.WaitingForChoice() {
		c.printLine("There is no choice to make right now.")
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		c.printLine("Choose which number?")
		return
	}
	if !c.Game.Dialogues.SelectChoice(n - 1) {
		c.printLine("No such choice.")
	}
}

func (c *CLI) cmdContinue() {
	if !c.Game.Dialogues.Active() {
		c.printLine("Nothing to continue.")
		return
	}
	if c.Game.Dialogues.WaitingForChoice() {
		c.printLine("Pick a choice first (type its number).")
		return
	}
	c.Game.Dialogues.Advance()
}

func (c *CLI) cmdQuests() {
	sections := []struct {
		label  string
		status quest.Status
	}{
		{"Active", quest.StatusActive},
		{"Available", quest.StatusAvailable},
		{"Completed", quest.StatusCompleted},
	}
	shown := false
	for _, sec := range sections {
		views := c.Game.Quests.List(sec.status)
		if len(views) == 0 {
			continue
		}
		shown = true
		c.printLine(sec.label + ":")
		for _, v := range views {
			c.printLine(fmt.Sprintf("  [%s] %s", v.Category, v.Title))
		}
	}
	if !shown {
		c.printLine("No quests yet.")
	}
}

func (c *CLI) cmdQuestDetail(name string) {
	if name == "" {
		c.printLine("Which quest? (quest <name>)")
		return
	}
	id, err := resolve.Quest(c.Defs, name)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	v, ok := c.Game.Quests.View(id)
	if !ok {
		c.printLine("No such quest.")
		return
	}
	c.printLine(fmt.Sprintf("%s [%s, %s]", v.Title, v.Category, v.Status))
	if v.Description != "" {
		c.printLine("  " + v.Description)
	}
	for _, o := range v.Objectives {
		mark := " "
		if o.Completed {
			mark = "x"
		}
		label := o.Description
		if label == "" {
			label = o.ID
		}
		c.printLine(fmt.Sprintf("  [%s] %s (%d/%d)", mark, label, o.Current, o.Required))
	}
}

func (c *CLI) cmdActivate(name string) {
	if name == "" {
		c.printLine("Activate which quest?")
		return
	}
	id, err := resolve.Quest(c.Defs, name)
	if err != nil {
		c.printLine(err.Error())
		return
	}
	if !c.Game.Quests.ActivateQuest(id) {
		c.printLine("You cannot take that quest right now.")
	}
}

func (c *CLI) cmdFactions() {
	if len(c.Defs.Factions.Factions) == 0 {
		c.printLine("No factions hold sway here.")
		return
	}
	for _, f := range c.Defs.Factions.Factions {
		rep := c.Game.Factions.Reputation(f.ID)
		tier := c.Game.Factions.Tier(f.ID)
		c.printLine(fmt.Sprintf("  %-24s %+4d  (%s)", c.factionName(f.ID), rep, tier))
	}
}

func (c *CLI) cmdStats() {
	gs := c.Game.State
	c.printLine(fmt.Sprintf("Level %d (exp %d/%d)", gs.Level(), gs.Exp(), gs.ExpRequirement()))
	c.printLine(fmt.Sprintf("Health %d/%d   Energy %d/%d", gs.Health(), gs.MaxHealth(), gs.Energy(), gs.MaxEnergy()))
	c.printLine(fmt.Sprintf("Attack %d   Defense %d", gs.AttackPower(), gs.Defense()))
	c.printLine(fmt.Sprintf("Gold %d", gs.Gold()))
	c.printLine("Area: " + prettyID(gs.CurrentArea()))
	c.printLine(fmt.Sprintf("Morality: %d", gs.Morality()))
	if traits := gs.Personality(); len(traits) > 0 {
		keys := make([]string, 0, len(traits))
		for k := range traits {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %+d", k, traits[k]))
		}
		c.printLine("Personality: " + strings.Join(parts, ", "))
	}
}

func (c *CLI) cmdInventory() {
	inv := c.Game.State.Inventory()
	if len(inv) == 0 {
		c.printLine("Your pack is empty.")
		return
	}
	items := make([]string, 0, len(inv))
	for id := range inv {
		items = append(items, id)
	}
	sort.Strings(items)
	for _, id := range items {
		c.printLine(fmt.Sprintf("  %s x%d", prettyID(id), inv[id]))
	}
}

func (c *CLI) cmdMinigame(object string) {
	fields := strings.Fields(object)
	if len(fields) == 2 && fields[1] == "done" {
		c.Game.CompleteMinigame(fields[0])
		c.printLine("Minigame finished: " + fields[0] + ".")
		return
	}
	c.printLine("Usage: minigame <id> done")
}

// --- Meta commands ---

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/saves":
		c.cmdSaves()

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(slot string) {
	if slot == "" {
		slot = "quicksave"
	}
	if err := c.Store.Save(context.Background(), slot, c.Game.Snapshot()); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", slot))
}

func (c *CLI) cmdLoad(slot string) {
	if slot == "" {
		slot = "quicksave"
	}
	doc, err := c.Store.Load(context.Background(), slot)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.printSystem(fmt.Sprintf("Load failed: no save named %s.", slot))
		} else {
			c.printSystem(fmt.Sprintf("Load failed: %v", err))
		}
		return
	}
	c.Game.Restore(doc)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", slot))
	c.printLine("You are in " + prettyID(c.Game.State.CurrentArea()) + ".")
}

func (c *CLI) cmdSaves() {
	slots, err := c.Store.List(context.Background())
	if err != nil {
		c.printSystem(fmt.Sprintf("Could not list saves: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	c.printSystem("Saves: " + strings.Join(slots, ", "))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [slot]   Save game (default: quicksave)",
		"  /load [slot]   Load game (default: quicksave)",
		"  /saves         List save slots",
		"  /quit          Exit game",
		"  /help          Show this help",
		"",
		"Game commands:",
		"  talk <npc>            Talk to someone",
		"  go <area>             Travel to an unlocked area",
		"  take <item>           Pick something up",
		"  interact <object>     Use a world object",
		"  fight <enemy>         Start a battle",
		"  attack/strike/defend/flee   Battle actions",
		"  choose <n> (or just the number)   Pick a dialogue option",
		"  continue              Advance the conversation",
		"  quests                Show your quest journal",
		"  quest <name>          Show one quest in detail",
		"  activate <name>       Take on an available quest",
		"  factions              Show faction standings",
		"  stats                 Show your character",
		"  inventory (i)         Check what you're carrying",
		"  minigame <id> done    Report a finished minigame",
		"  again (g)             Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// --- Display helpers ---

func (c *CLI) questTitle(id string) string {
	if def, ok := c.Defs.Quest(id); ok && def.Title != "" {
		return def.Title
	}
	return id
}

func (c *CLI) factionName(id string) string {
	if def, ok := c.Defs.Faction(id); ok && def.Name != "" {
		return def.Name
	}
	return prettyID(id)
}

func (c *CLI) enemyName(id string) string {
	if def, ok := c.Defs.Enemies[id]; ok && def.Name != "" {
		return def.Name
	}
	return prettyID(id)
}

func (c *CLI) objectiveDesc(questID, objectiveID string) string {
	if v, ok := c.Game.Quests.View(questID); ok {
		for _, o := range v.Objectives {
			if o.ID == objectiveID && o.Description != "" {
				return o.Description
			}
		}
	}
	return objectiveID
}

// prettyID turns a content id into display text: "ember_sanctum"
// reads as "ember sanctum".
func prettyID(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}

func (c *CLI) printLines(lines []string) {
	for _, l := range lines {
		c.printLine(l)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
