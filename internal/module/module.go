package module

import (
	"context"
	"fmt"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/signal"
)

// Module is one node of the dependency graph. Identity is the pair of type
// name and replication key, unique within a container.
type Module struct {
	desc     *Descriptor
	key      string
	behavior Behavior
	engine   signal.Engine

	sendToPhysicalOutput bool
	autoStop             bool
	fadeIn               float64
	fadeOut              float64
	defaults             map[string]any

	// slots holds the declared inputs in declaration order; resolved
	// points at the concrete module per slot once inputs are assigned.
	slots    []Slot
	resolved map[string]*Module

	// consumers is the non-owning set of modules that use this module as
	// an input, kept in first-registration order for deterministic
	// traversal.
	consumers []*Module

	units          []signal.Unit
	fader          signal.Unit
	output         signal.Unit
	outputChannels int

	playing        bool
	assignedInputs bool
	builtPath      bool

	chains chainCache
}

func newModule(ctx context.Context, desc *Descriptor, key string, cfg instanceConfig, engine signal.Engine) (*Module, error) {
	behavior, err := desc.New(cfg.params)
	if err != nil {
		return nil, err
	}
	m := &Module{
		desc:                 desc,
		key:                  key,
		behavior:             behavior,
		engine:               engine,
		sendToPhysicalOutput: cfg.send,
		autoStop:             cfg.autoStop,
		fadeIn:               cfg.fadeIn,
		fadeOut:              cfg.fadeOut,
		defaults:             cfg.defaults,
		resolved:             make(map[string]*Module),
		outputChannels:       1,
	}
	declared := desc.Slots
	if desc.SlotsFor != nil {
		declared = desc.SlotsFor(cfg.params)
	}
	// A configured binding replaces the slot's default strategy but keeps
	// its implicit flag.
	bound := make(map[string]bool, len(cfg.bindings))
	for _, slot := range declared {
		input := slot.Default
		if target, ok := cfg.bindings[slot.Name]; ok {
			input = NewCatch(target, slot.Default.Implicit())
			bound[slot.Name] = true
		}
		m.slots = append(m.slots, Slot{Name: slot.Name, Default: input})
	}
	// A binding that matches no declared slot is almost always a typo in
	// the configuration; stay loud about it.
	for slot, target := range cfg.bindings {
		if !bound[slot] {
			ctxlog.FromContext(ctx).Warn("Input binding names an undeclared slot, ignoring it.",
				"module", m.Name(), "slot", slot, "target", target)
		}
	}
	return m, nil
}

// instanceConfig carries the per-instance construction arguments.
type instanceConfig struct {
	send     bool
	autoStop bool
	fadeIn   float64
	fadeOut  float64
	bindings map[string]string
	defaults map[string]any
	params   map[string]any
}

// Name returns the dotted identifier "type.replication_key".
func (m *Module) Name() string { return m.desc.Type + "." + m.key }

// Type returns the module type name.
func (m *Module) Type() string { return m.desc.Type }

// Key returns the replication key.
func (m *Module) Key() string { return m.key }

// String implements fmt.Stringer.
func (m *Module) String() string { return m.Name() }

// AutoStop reports whether cue deactivation may silence this module
// without an explicit instruction.
func (m *Module) AutoStop() bool { return m.autoStop }

// SendToPhysicalOutput reports whether the module routes to a physical
// output channel.
func (m *Module) SendToPhysicalOutput() bool { return m.sendToPhysicalOutput }

// FadeInDuration returns the fade-in duration in seconds.
func (m *Module) FadeInDuration() float64 { return m.fadeIn }

// FadeOutDuration returns the fade-out duration in seconds.
func (m *Module) FadeOutDuration() float64 { return m.fadeOut }

// IsPlaying reports the control-plane playing flag.
func (m *Module) IsPlaying() bool { return m.playing }

// Behavior exposes the per-type behavior, mainly for tests.
func (m *Module) Behavior() Behavior { return m.behavior }

// InputModule returns the resolved module of a slot, or nil before input
// assignment.
func (m *Module) InputModule(slot string) *Module { return m.resolved[slot] }

// Slots returns the declared input slots in declaration order.
func (m *Module) Slots() []Slot { return m.slots }

// Duration reports the scheduled duration of the current initialisation.
func (m *Module) Duration() float64 { return m.behavior.Duration() }

// NewUnit creates an engine unit owned by this module's signal path. The
// unit is tracked so play, stop and close reach every internal handle.
func (m *Module) NewUnit(kind string) (signal.Unit, error) {
	u, err := m.engine.NewUnit(kind, fmt.Sprintf("%s/%s#%d", m.Name(), kind, len(m.units)))
	if err != nil {
		return nil, fmt.Errorf("module '%s': %w", m.Name(), err)
	}
	m.units = append(m.units, u)
	return u, nil
}

// SetOutput marks a unit as the module's audible output. The output unit
// is the one routed to physical channels when the module is configured to
// send there.
func (m *Module) SetOutput(u signal.Unit) { m.output = u }

// SetOutputChannels declares how many physical channels the output covers.
func (m *Module) SetOutputChannels(n int) {
	if n > 0 {
		m.outputChannels = n
	}
}

// Output returns the module's audible output unit.
func (m *Module) Output() signal.Unit { return m.output }

// Setup resolves input bindings and then builds the internal signal path.
// Both halves run at most once; calling Setup again is a no-op.
func (m *Module) Setup(ctx context.Context, c *Container) error {
	if err := m.AssignInputs(ctx, c); err != nil {
		return err
	}
	return m.BuildSignalPath(ctx)
}

// AssignInputs resolves every declared slot exactly once, stores the
// resolved module and registers this module in its consumer set.
func (m *Module) AssignInputs(ctx context.Context, c *Container) error {
	if m.assignedInputs {
		return nil
	}
	for _, slot := range m.slots {
		in, err := slot.Default.resolve(ctx, c, m, slot.Name)
		if err != nil {
			return err
		}
		m.resolved[slot.Name] = in
		in.addConsumer(m)
	}
	m.assignedInputs = true
	return nil
}

func (m *Module) addConsumer(consumer *Module) {
	for _, existing := range m.consumers {
		if existing == consumer {
			return
		}
	}
	m.consumers = append(m.consumers, consumer)
}

// BuildSignalPath constructs the internal signal units exactly once. The
// fade envelope is a dedicated unit so starts and stops are always bounded
// by a ramp.
func (m *Module) BuildSignalPath(ctx context.Context) error {
	if m.builtPath {
		return nil
	}
	fader, err := m.NewUnit("fader")
	if err != nil {
		return err
	}
	fader.Set("fadein", m.fadeIn)
	fader.Set("fadeout", m.fadeOut)
	m.fader = fader
	if err := m.behavior.Build(ctx, m); err != nil {
		return fmt.Errorf("building signal path of '%s': %w", m.Name(), err)
	}
	m.builtPath = true
	if m.desc.AlwaysOn {
		m.playing = true
		m.playUnits(0, 0)
	}
	return nil
}

// Initialise merges the stored defaults under the given parameters and
// applies the result. Parameter keys that name an input slot are forwarded
// to that slot's module instead: a map value becomes the slot module's own
// initialise call, a bare number targets a slot whose module exposes a
// plain settable value. The returned slice lists every module this call
// touched, the receiver last.
//
// A parameter mismatch never interrupts playback: the behavior's error is
// logged and the module keeps its previous state.
func (m *Module) Initialise(ctx context.Context, params map[string]any) []*Module {
	logger := ctxlog.FromContext(ctx)

	merged := make(map[string]any, len(m.defaults)+len(params))
	for k, v := range m.defaults {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}

	// Slot-addressed parameters are handled in declaration order so the
	// touched list stays deterministic; whatever remains goes to the
	// behavior itself.
	var touched []*Module
	for _, slot := range m.slots {
		value, ok := merged[slot.Name]
		if !ok {
			continue
		}
		delete(merged, slot.Name)
		in := m.resolved[slot.Name]
		if in == nil {
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			touched = append(touched, in.Initialise(ctx, v)...)
		case float64, int, int64:
			if _, ok := in.behavior.(Settable); ok {
				touched = append(touched, in.Initialise(ctx, map[string]any{"value": toFloat(v)})...)
			} else {
				logger.Warn("Slot does not accept a bare value, ignoring parameter.",
					"module", m.Name(), "slot", slot.Name, "value", v)
			}
		default:
			logger.Warn("Invalid value type for input slot, ignoring parameter.",
				"module", m.Name(), "slot", slot.Name, "value", value)
		}
	}
	rest := merged

	if err := m.behavior.Initialise(ctx, m, rest); err != nil {
		logger.Warn("Skipped module initialisation, previous state persists.",
			"module", m.Name(), "error", err)
	}

	// When switching between playing cues, play is never called again, but
	// the signal path must keep running under the new parameters.
	if m.playing {
		m.playUnits(0, 0)
	}

	return append(touched, m)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Play starts the fade envelope and the signal path. Gated on the playing
// flag: playing an already playing module is a no-op, which also cancels
// any pending stop the engine has not executed yet.
func (m *Module) Play(duration, delay float64) {
	if m.playing || !m.builtPath {
		return
	}
	if m.desc.AlwaysOn {
		return
	}
	m.playing = true
	m.fader.Play(duration, delay)
	m.playUnits(duration, delay)
}

func (m *Module) playUnits(duration, delay float64) {
	for _, u := range m.units {
		if u == m.fader {
			continue
		}
		u.Play(duration, delay)
	}
	if m.sendToPhysicalOutput && m.output != nil {
		for channel := 0; channel < m.outputChannels; channel++ {
			m.output.Out(channel)
		}
	}
}

// Stop schedules the fade-out after wait seconds and the signal path after
// the fade has completed. Gated on the playing flag.
func (m *Module) Stop(wait float64) {
	if !m.playing {
		return
	}
	if m.desc.AlwaysOn {
		return
	}
	m.playing = false
	m.fader.Stop(wait)
	for _, u := range m.units {
		if u == m.fader {
			continue
		}
		u.Stop(wait + m.fadeOut)
	}
}

// JumpTo forwards a transport-position seek to the behavior when it
// supports seeking.
func (m *Module) JumpTo(ctx context.Context, seconds float64) {
	if seeker, ok := m.behavior.(Seeker); ok {
		seeker.JumpTo(ctx, m, seconds)
	}
}

// Close stops the signal path immediately. Only the container calls this,
// at process shutdown.
func (m *Module) Close() {
	m.playing = false
	for _, u := range m.units {
		u.Stop(0)
	}
}
