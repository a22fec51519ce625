// Package dialogue runs dialogue tree sessions: it presents lines,
// filters choices, applies effects, and walks the line graph.
package dialogue

import (
	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/condition"
	"github.com/mirren/emberfall/engine/effect"
	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

// NextEnd is the explicit end marker in line and choice navigation.
// An absent next means the same thing.
const NextEnd = "end"

// session is the state machine for one running dialogue.
type session struct {
	tree    types.DialogueDef
	lineIdx int
	waiting bool
	choices []types.ChoiceDef // current line's choices after filtering
}

// System runs at most one dialogue session at a time.
type System struct {
	defs  *state.Defs
	conds *condition.Evaluator
	apply *effect.Applier
	bus   *events.Bus
	log   *zap.Logger

	session *session
}

// NewSystem creates a dialogue system over the given content and
// collaborators.
func NewSystem(defs *state.Defs, conds *condition.Evaluator, apply *effect.Applier, bus *events.Bus, log *zap.Logger) *System {
	return &System{defs: defs, conds: conds, apply: apply, bus: bus, log: log}
}

// Active reports whether a session is running.
func (s *System) Active() bool { return s.session != nil }

// Current returns the running dialogue's id, or "".
func (s *System) Current() string {
	if s.session == nil {
		return ""
	}
	return s.session.tree.ID
}

// WaitingForChoice reports whether the session is blocked on
// SelectChoice.
func (s *System) WaitingForChoice() bool {
	return s.session != nil && s.session.waiting
}

// Start begins a dialogue at its first line. It fails when the id is
// unknown, the tree has no lines, or another session is already
// running.
func (s *System) Start(id string) bool {
	if s.session != nil {
		s.log.Warn("dialogue already active, not starting another",
			zap.String("active", s.session.tree.ID),
			zap.String("requested", id))
		return false
	}
	tree, ok := s.defs.Dialogues[id]
	if !ok {
		s.log.Warn("unknown dialogue", zap.String("dialogue", id))
		return false
	}
	if len(tree.Lines) == 0 {
		s.log.Warn("dialogue has no lines", zap.String("dialogue", id))
		return false
	}

	s.session = &session{tree: tree}
	s.bus.Publish(events.DialogueStarted{Dialogue: id})
	s.present()
	return true
}

// Advance moves past the current line: the line's own effects apply
// first, then navigation follows its next. A no-op while waiting on a
// choice or with no session running.
func (s *System) Advance() {
	if s.session == nil || s.session.waiting {
		return
	}

	line := s.session.tree.Lines[s.session.lineIdx]
	s.apply.ApplyAll(line.Effects)
	s.follow(line.Next)
}

// SelectChoice picks one of the current line's surviving choices by its
// index in the filtered list. Returns false when no session is waiting
// or the index is out of bounds.
func (s *System) SelectChoice(index int) bool {
	if s.session == nil || !s.session.waiting {
		return false
	}
	if index < 0 || index >= len(s.session.choices) {
		return false
	}

	choice := s.session.choices[index]
	s.session.waiting = false
	s.bus.Publish(events.ChoiceSelected{
		Dialogue: s.session.tree.ID,
		Index:    index,
		Text:     choice.Text,
	})
	s.apply.ApplyAll(choice.Effects)
	s.follow(choice.Next)
	return true
}

// ForceClose discards the session without running effects or emitting
// end semantics. Callers must treat it as an abort, not an ending.
func (s *System) ForceClose() {
	s.session = nil
}

// present emits the render payload for the current line. The line's
// choices are filtered first; the session waits only when at least one
// survives.
func (s *System) present() {
	sess := s.session
	line := sess.tree.Lines[sess.lineIdx]

	sess.choices = sess.choices[:0]
	var rendered []events.RenderChoice
	for _, c := range line.Choices {
		if !s.conds.Eval(c.Condition) {
			continue
		}
		rendered = append(rendered, events.RenderChoice{Index: len(sess.choices), Text: c.Text})
		sess.choices = append(sess.choices, c)
	}
	sess.waiting = len(sess.choices) > 0

	s.bus.Publish(events.DialogueLine{
		Dialogue:    sess.tree.ID,
		Speaker:     fallback(line.Speaker, sess.tree.Speaker),
		SpeakerName: fallback(line.SpeakerName, sess.tree.SpeakerName),
		Portrait:    fallback(line.Portrait, sess.tree.Portrait),
		Text:        line.Text,
		Choices:     rendered,
	})
}

// follow resolves a next reference. Empty and "end" end the session; an
// id that resolves presents that line; one that does not logs a warning
// and ends the session rather than leaving it stuck.
func (s *System) follow(next string) {
	// An effect handler may ForceClose mid-line, leaving nothing to steer.
	if s.session == nil {
		return
	}
	if next == "" || next == NextEnd {
		s.end()
		return
	}
	for i, line := range s.session.tree.Lines {
		if line.ID == next {
			s.session.lineIdx = i
			s.present()
			return
		}
	}
	s.log.Warn("dialogue jump target not found, ending",
		zap.String("dialogue", s.session.tree.ID),
		zap.String("target", next))
	s.end()
}

func (s *System) end() {
	id := s.session.tree.ID
	s.session = nil
	s.bus.Publish(events.DialogueEnded{Dialogue: id})
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
