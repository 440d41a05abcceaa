// Package value provides the simplest signal source: a constant. It runs
// from setup until shutdown and is the default target of auto-created
// control inputs such as frequency and decibel slots.
package value

import (
	"context"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// DecibelSlot is the shared declaration of the "decibel" control input used
// by every audible module type. It auto-creates a value instance holding
// 0 dB so unconfigured modules play at unity gain.
func DecibelSlot() module.Slot {
	return module.Slot{
		Name:    "decibel",
		Default: module.NewAutoSetup("value", map[string]any{"value": 0.0}, true),
	}
}

type behavior struct {
	module.SettableMarker

	// initial is the construction-time value; it survives cue switches
	// that do not address this module explicitly.
	initial float64
	signal  signal.Unit
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	sig, err := host.NewUnit("constant")
	if err != nil {
		return err
	}
	b.signal = sig
	sig.Set("value", b.initial)
	host.SetOutput(sig)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	v, _ := params.Float(p, "value", b.initial)
	b.signal.Set("value", v)
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type:     "value",
		AlwaysOn: true,
		New: func(p map[string]any) (module.Behavior, error) {
			v, _ := params.Float(p, "value", 0)
			return &behavior{initial: v}, nil
		},
	})
}
