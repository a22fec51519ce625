package tui

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mirren/emberfall/cli"
	"github.com/mirren/emberfall/engine"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/storage"
)

// rawLine stores an unstyled transcript line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// Model is the Bubble Tea model for the Emberfall TUI.
type Model struct {
	game  *engine.Game
	defs  *state.Defs
	shell *cli.CLI      // command processor shared with the plain front end
	buf   *bytes.Buffer // captures shell output per submitted line

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated transcript (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
}

// gameOutputMsg carries command output into the Update loop.
type gameOutputMsg struct {
	input string   // echoed player input (empty for the intro)
	lines []string // output lines
}

// New creates a TUI model over the given game session. Every command
// runs through the same processor as the plain front end, with its
// output captured and rendered into the viewport.
func New(g *engine.Game, store storage.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	buf := &bytes.Buffer{}
	shell := cli.New(g, store)
	shell.Out = buf

	return Model{
		game:    g,
		defs:    g.Defs,
		shell:   shell,
		buf:     buf,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(g *engine.Game, store storage.Store) error {
	m := New(g, store)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the title and intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		header := m.defs.Game.Title
		if m.defs.Game.Version != "" {
			header += " v" + m.defs.Game.Version
		}
		if m.defs.Game.Author != "" {
			header += " by " + m.defs.Game.Author
		}

		lines := []string{header, ""}
		if m.defs.Game.Intro != "" {
			lines = append(lines, m.defs.Game.Intro, "")
		}
		lines = append(lines,
			"You are in "+displayName(m.game.State.CurrentArea())+".",
			"Type /help for commands.")

		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// After a defeat only meta-commands still work, so the player can
	// load an earlier save or leave.
	if m.game.GameOver() && !strings.HasPrefix(input, "/") {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{
			"Your story ends here. /load returns to a save, /quit leaves.",
		}})
		return m, nil
	}

	lines, quit := m.exec(input)
	m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// exec runs one line through the command shell and collects the
// output it wrote.
func (m Model) exec(input string) (lines []string, quit bool) {
	m.buf.Reset()
	quit = m.shell.Exec(input)
	out := strings.TrimRight(m.buf.String(), "\n")
	if out == "" {
		return nil, quit
	}
	return strings.Split(out, "\n"), quit
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
		} else {
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSpeech:
		return styledSpeech(line)
	case kindChoice:
		return styleChoice.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those drive input history instead).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
