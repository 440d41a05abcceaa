package cue

import (
	"context"
	"fmt"
)

// Manager is a small finite-state machine sequencing between cues. The
// state is the current index into the cue list, always taken modulo the
// cue count: navigation wraps around and there is no terminal state.
type Manager struct {
	cues  []*Cue
	names []string

	index       int
	activeIndex int
}

// NewManager builds a manager over an ordered, non-empty cue list and
// activates the first cue.
func NewManager(ctx context.Context, cues []*Cue) (*Manager, error) {
	if len(cues) == 0 {
		return nil, fmt.Errorf("cue manager needs at least one cue")
	}
	names := make([]string, len(cues))
	seen := make(map[string]bool, len(cues))
	for i, c := range cues {
		if seen[c.Name()] {
			return nil, fmt.Errorf("duplicate cue name '%s'", c.Name())
		}
		seen[c.Name()] = true
		names[i] = c.Name()
	}
	m := &Manager{cues: cues, names: names, activeIndex: -1}
	m.activateCurrent(ctx)
	return m, nil
}

// CueCount returns the number of cues.
func (m *Manager) CueCount() int { return len(m.cues) }

// CueNames returns every cue name in sequence order.
func (m *Manager) CueNames() []string {
	return append([]string(nil), m.names...)
}

// CurrentCueIndex returns the current position in the sequence.
func (m *Manager) CurrentCueIndex() int { return m.index }

// CurrentCue returns the cue at the current position.
func (m *Manager) CurrentCue() *Cue { return m.cues[m.index] }

// Cue returns the cue at the given wrapped index.
func (m *Manager) Cue(index int) *Cue { return m.cues[m.wrap(index)] }

// ByName looks a cue up by its unique name.
func (m *Manager) ByName(name string) (*Cue, bool) {
	for i, n := range m.names {
		if n == name {
			return m.cues[i], true
		}
	}
	return nil, false
}

// IsPlaying reports whether the current cue is playing.
func (m *Manager) IsPlaying() bool { return m.CurrentCue().IsPlaying() }

// MoveToPreviousCue switches to the previous cue, wrapping at the start.
func (m *Manager) MoveToPreviousCue(ctx context.Context) {
	m.moveAndActivate(ctx, m.index-1)
}

// MoveToNextCue switches to the next cue, wrapping at the end.
func (m *Manager) MoveToNextCue(ctx context.Context) {
	m.moveAndActivate(ctx, m.index+1)
}

// JumpToCue switches to an arbitrary (wrapped) index.
func (m *Manager) JumpToCue(ctx context.Context, index int) {
	m.moveAndActivate(ctx, index)
}

// Play starts the current cue.
func (m *Manager) Play(ctx context.Context) { m.CurrentCue().Play(ctx) }

// Stop stops the current cue.
func (m *Manager) Stop(ctx context.Context, wait float64) { m.CurrentCue().Stop(ctx, wait) }

// moveAndActivate is the single transition every navigation operation
// funnels through. The outgoing cue keeps playing whatever the incoming
// cue also needs; if it was playing, the incoming cue starts playing too.
func (m *Manager) moveAndActivate(ctx context.Context, index int) {
	outgoing := m.CurrentCue()
	wasPlaying := outgoing.IsPlaying()
	m.index = m.wrap(index)
	outgoing.Deactivate(ctx, m.CurrentCue().ActiveModules(ctx))
	m.activateCurrent(ctx)
	if wasPlaying {
		m.CurrentCue().Play(ctx)
	}
}

// activateCurrent activates the cue at the current index unless it is
// already the active one, then rewinds the transport.
func (m *Manager) activateCurrent(ctx context.Context) {
	if m.activeIndex != m.index {
		m.CurrentCue().Activate(ctx)
		m.activeIndex = m.index
	}
	m.CurrentCue().JumpTo(ctx, 0)
}

func (m *Manager) wrap(index int) int {
	count := len(m.cues)
	return ((index % count) + count) % count
}
