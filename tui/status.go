package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mirren/emberfall/engine/quest"
)

// displayName derives human-readable text from a content id.
// "ember_sanctum" -> "Ember Sanctum", "old_mill" -> "Old Mill".
func displayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// the current area, health, gold, level, and active quest count. A
// running battle takes over the right-hand side.
func (m Model) renderStatusBar() string {
	gs := m.game.State

	left := fmt.Sprintf(" %s | HP %d/%d | Gold %d",
		displayName(gs.CurrentArea()), gs.Health(), gs.MaxHealth(), gs.Gold())

	var right string
	if b := m.game.Battle(); b != nil {
		right = fmt.Sprintf("Fighting %s (%d) | Lv %d ",
			m.enemyLabel(b.Enemy()), b.EnemyHealth(), gs.Level())
	} else {
		active := len(m.game.Quests.List(quest.StatusActive))
		right = fmt.Sprintf("Lv %d | Quests: %d ", gs.Level(), active)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// enemyLabel names a battle opponent, resolving instance ids like
// "goblin_2" back to their definition.
func (m Model) enemyLabel(instance string) string {
	id := instance
	if _, ok := m.defs.Enemies[id]; !ok {
		if t := quest.EnemyType(instance); t != "" {
			id = t
		}
	}
	if def, ok := m.defs.Enemies[id]; ok && def.Name != "" {
		return def.Name
	}
	return displayName(id)
}
