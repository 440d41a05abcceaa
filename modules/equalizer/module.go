// Package equalizer provides a single parametric equalizer band over one
// audio input. Center frequency and boost come from auto-created control
// inputs; the band width is set per cue.
package equalizer

import (
	"context"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const defaultFilterType = "peak"

// filterTypes maps the configuration name to the engine's band type
// selector. "notch" is a peak band with a negative boost, so both names
// share a selector.
var filterTypes = map[string]int{
	"peak":      0,
	"notch":     0,
	"lowshelf":  1,
	"highshelf": 2,
}

type behavior struct {
	filterType string

	equalizer signal.Unit
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	selector, ok := filterTypes[b.filterType]
	if !ok {
		ctxlog.FromContext(ctx).Warn("Undefined filter type, falling back to peak.",
			"module", host.Name(), "filter_type", b.filterType)
		selector = filterTypes[defaultFilterType]
	}
	eq, err := host.NewUnit("equalizer")
	if err != nil {
		return err
	}
	b.equalizer = eq
	eq.Set("source", host.InputModule("audio_input").Output())
	eq.Set("frequency", host.InputModule("frequency").Output())
	eq.Set("boost", host.InputModule("boost").Output())
	eq.Set("decibel", host.InputModule("decibel").Output())
	eq.Set("filter_type", selector)
	host.SetOutput(eq)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	q, _ := params.Float(p, "q", 1)
	b.equalizer.Set("q", q)
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "equalizer",
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			{
				Name:    "frequency",
				Default: module.NewAutoSetup("value", map[string]any{"value": 500.0}, true),
			},
			{
				Name:    "boost",
				Default: module.NewAutoSetup("value", map[string]any{"value": -3.0}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			filterType, _ := params.String(p, "filter_type", defaultFilterType)
			return &behavior{filterType: filterType}, nil
		},
	})
}
