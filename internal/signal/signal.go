// Package signal defines the boundary to the external signal engine: the
// process that owns the real-time audio thread and performs all
// sample-level work. The core never renders audio itself; it issues
// non-blocking play/stop/set commands that the engine consumes on its own
// timeline. Duration, delay and wait arguments are therefore scheduling
// instructions for the engine, never control-thread sleeps.
package signal

import "context"

// Unit is a single processing primitive owned by the engine. All methods
// must return without blocking the control thread.
type Unit interface {
	// Play schedules the unit to start producing sound. A zero duration
	// means "until stopped"; delay postpones the start on the engine's
	// timeline.
	Play(duration, delay float64)

	// Stop schedules the unit to stop after wait seconds.
	Stop(wait float64)

	// Set updates a named parameter of the unit.
	Set(param string, value any)

	// Out routes the unit to a physical output channel.
	Out(channel int)

	// Producing reports whether the unit is currently producing sound.
	Producing() bool
}

// Engine instantiates processing units and acknowledges shutdown.
type Engine interface {
	// NewUnit creates a processing unit of the given kind. The name is a
	// stable identifier used for diagnostics and remote addressing.
	NewUnit(kind, name string) (Unit, error)

	// Drain asks the engine to finish any scheduled fades and reports back
	// once the output is silent. It replaces a timed shutdown sleep with an
	// explicit acknowledgment.
	Drain(ctx context.Context) error
}
