// Package sine provides a test oscillator. Frequency and gain come from
// auto-created control inputs, so a cue can write "sine.x = {frequency: 99}"
// without declaring the control modules.
package sine

import (
	"context"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type behavior struct{}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	osc, err := host.NewUnit("oscillator")
	if err != nil {
		return err
	}
	osc.Set("frequency", host.InputModule("frequency").Output())
	osc.Set("decibel", host.InputModule("decibel").Output())
	host.SetOutput(osc)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "sine",
		Slots: []module.Slot{
			{
				Name:    "frequency",
				Default: module.NewAutoSetup("value", map[string]any{"value": 1000.0}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			return &behavior{}, nil
		},
	})
}
