package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("208"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSpeaker = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSpeech = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("208"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindSpeech
	kindChoice
	kindSystem
	kindError
)

// Stat labels share the "Name: text" shape with dialogue and must not
// be styled as speech.
var labelPrefixes = map[string]bool{
	"Area":              true,
	"Morality":          true,
	"Personality":       true,
	"Taken":             true,
	"Usage":             true,
	"Minigame finished": true,
}

// classifyLine determines what kind of output line this is. The shell
// brackets notifications, indents numbered dialogue choices, and
// prefixes speech with the speaker's name; everything else reads as
// narration.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isChoiceLine(line):
		return kindChoice
	case strings.HasPrefix(line, "You cannot"),
		strings.HasPrefix(line, "There is no"),
		strings.HasPrefix(line, "No such"),
		strings.HasPrefix(line, "I don't know"),
		strings.HasPrefix(line, "You are mid-battle"):
		return kindError
	case hasSpeakerPrefix(line):
		return kindSpeech
	default:
		return kindNarrative
	}
}

// isChoiceLine matches the shell's numbered dialogue options,
// "  1. Like this."
func isChoiceLine(line string) bool {
	if !strings.HasPrefix(line, "  ") {
		return false
	}
	rest := line[2:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(rest[i:], ". ")
}

// hasSpeakerPrefix reports whether the line starts with a short
// capitalized name followed by ": ", like "Elder Maren: Welcome."
func hasSpeakerPrefix(line string) bool {
	idx := strings.Index(line, ": ")
	if idx <= 0 {
		return false
	}
	name := line[:idx]
	if labelPrefixes[name] {
		return false
	}
	words := strings.Fields(name)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		if w[0] < 'A' || w[0] > 'Z' {
			return false
		}
	}
	return true
}

// styledSpeech renders "Elder Maren: Welcome." with the speaker bold.
func styledSpeech(line string) string {
	idx := strings.Index(line, ": ")
	if idx <= 0 {
		return styleSpeech.Render(line)
	}
	return styleSpeaker.Render(line[:idx+1]) + styleSpeech.Render(line[idx+1:])
}
