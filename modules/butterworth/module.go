// Package butterworth provides fixed-slope second-order lowpass and
// highpass filter stages, the cheap alternative to the configurable
// biquad filter.
package butterworth

import (
	"context"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package. It
// registers both the lowpass and the highpass variant.
type Module struct{}

type behavior struct {
	// kind is the engine unit kind, "lowpass" or "highpass".
	kind string
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	f, err := host.NewUnit(b.kind)
	if err != nil {
		return err
	}
	f.Set("source", host.InputModule("audio_input").Output())
	f.Set("frequency", host.InputModule("frequency").Output())
	f.Set("decibel", host.InputModule("decibel").Output())
	host.SetOutput(f)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

func descriptor(moduleType, kind string) *module.Descriptor {
	return &module.Descriptor{
		Type: moduleType,
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			{
				Name:    "frequency",
				Default: module.NewAutoSetup("value", map[string]any{"value": 1000.0}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			return &behavior{kind: kind}, nil
		},
	}
}

// Register registers the module types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(descriptor("butterworth_lowpass_filter", "lowpass"))
	r.RegisterType(descriptor("butterworth_highpass_filter", "highpass"))
}
