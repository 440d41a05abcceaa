// Package waveguidereverb provides an eight-delay-line waveguide reverb
// over one audio input. Feedback, lowpass cutoff and wet/dry balance come
// from auto-created control inputs.
package waveguidereverb

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
	reverb, err := host.NewUnit("reverb")
	if err != nil {
		return err
	}
	reverb.Set("source", host.InputModule("audio_input").Output())
	reverb.Set("feedback", host.InputModule("feedback").Output())
	reverb.Set("cutoff_frequency", host.InputModule("cutoff_frequency").Output())
	reverb.Set("balance", host.InputModule("balance").Output())
	reverb.Set("decibel", host.InputModule("decibel").Output())
	host.SetOutput(reverb)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "waveguide_reverb",
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			{
				Name:    "balance",
				Default: module.NewAutoSetup("value", map[string]any{"value": 1.0}, true),
			},
			{
				Name:    "cutoff_frequency",
				Default: module.NewAutoSetup("value", map[string]any{"value": 6000.0}, true),
			},
			{
				Name:    "feedback",
				Default: module.NewAutoSetup("value", map[string]any{"value": 0.6}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			return &behavior{}, nil
		},
	})
}
