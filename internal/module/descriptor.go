package module

import "context"

// Behavior is the per-type logic of a module: building its internal signal
// path and applying initialisation parameters. Concrete module types live
// in the top-level modules/ packages and register a Descriptor; the Module
// struct itself stays generic.
type Behavior interface {
	// Build creates the module's internal signal units via host.NewUnit.
	// Inputs are resolved and already built when Build runs.
	Build(ctx context.Context, host *Module) error

	// Initialise applies parameters to the built signal path. A missing
	// required parameter is reported as an error; the caller logs a warning
	// and keeps the previous state.
	Initialise(ctx context.Context, host *Module, params map[string]any) error

	// Duration reports the scheduled duration of the current
	// initialisation in seconds. Zero means unbounded.
	Duration() float64
}

// Settable marks behaviors that expose one plain scalar value (value,
// parameter). A cue entry may address such a slot with a bare number
// instead of a parameter map. Behaviors opt in by embedding SettableMarker.
type Settable interface {
	Behavior
	Settable()
}

// SettableMarker is embedded by behaviors implementing Settable.
type SettableMarker struct{}

// Settable marks the embedding behavior as Settable.
func (SettableMarker) Settable() {}

// Seeker is implemented by behaviors that support transport-position
// seeking.
type Seeker interface {
	JumpTo(ctx context.Context, host *Module, seconds float64)
}

// Slot declares one named input of a module type together with its default
// binding strategy.
type Slot struct {
	Name    string
	Default Input
}

// Descriptor is the static registration record of one module type: its
// slot table as plain data plus a behavior factory. Slot tables are never
// mutated after registration.
type Descriptor struct {
	// Type is the module type name used in configuration and identifiers.
	Type string

	// Slots lists the declared inputs in declaration order.
	Slots []Slot

	// SlotsFor, when set, derives the slot table from the constructor
	// parameters instead of Slots. Used by types whose input count is
	// configured per instance.
	SlotsFor func(params map[string]any) []Slot

	// AlwaysOn marks types that run from setup until shutdown; Play and
	// Stop become no-ops for them.
	AlwaysOn bool

	// New constructs the behavior from constructor parameters.
	New func(params map[string]any) (Behavior, error)
}
