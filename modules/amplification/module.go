// Package amplification provides a gain stage over one audio input.
package amplification

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
	gain, err := host.NewUnit("gain")
	if err != nil {
		return err
	}
	gain.Set("source", host.InputModule("audio_input").Output())
	gain.Set("decibel", host.InputModule("decibel").Output())
	host.SetOutput(gain)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "amplification",
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			return &behavior{}, nil
		},
	})
}
