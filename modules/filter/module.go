// Package filter provides a multi-stage biquad filter over one audio
// input. Cutoff frequency and resonance come from auto-created control
// inputs, so both can be driven by envelopes.
package filter

import (
	"context"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const defaultFilterType = "lowpass"

// filterTypes maps the configuration name to the engine's filter type
// selector.
var filterTypes = map[string]int{
	"lowpass":  0,
	"highpass": 1,
	"bandpass": 2,
	"bandstop": 3,
	"allpass":  4,
}

type behavior struct {
	stages     int
	filterType string
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	selector, ok := filterTypes[b.filterType]
	if !ok {
		ctxlog.FromContext(ctx).Warn("Undefined filter type, falling back to lowpass.",
			"module", host.Name(), "filter_type", b.filterType)
		selector = filterTypes[defaultFilterType]
	}
	f, err := host.NewUnit("filter")
	if err != nil {
		return err
	}
	f.Set("source", host.InputModule("audio_input").Output())
	f.Set("frequency", host.InputModule("frequency").Output())
	f.Set("q", host.InputModule("q").Output())
	f.Set("decibel", host.InputModule("decibel").Output())
	f.Set("stages", b.stages)
	f.Set("filter_type", selector)
	host.SetOutput(f)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "filter",
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			{
				Name:    "frequency",
				Default: module.NewAutoSetup("value", map[string]any{"value": 1000.0}, true),
			},
			{
				Name:    "q",
				Default: module.NewAutoSetup("value", map[string]any{"value": 5.0}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			stages, _ := params.Int(p, "stages", 4)
			filterType, _ := params.String(p, "filter_type", defaultFilterType)
			return &behavior{stages: stages, filterType: filterType}, nil
		},
	})
}
