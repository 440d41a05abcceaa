// Package midiinput provides a control signal driven by a hardware MIDI
// controller attached to the audio server. Like value it runs from setup
// until shutdown; a cue only rescales its output range.
package midiinput

import (
	"context"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type behavior struct {
	controlNumber int
	channel       int
	initialValue  float64

	midi signal.Unit
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	midi, err := host.NewUnit("midi_in")
	if err != nil {
		return err
	}
	b.midi = midi
	midi.Set("control_number", b.controlNumber)
	midi.Set("channel", b.channel)
	midi.Set("initial_value", b.initialValue)
	host.SetOutput(midi)
	return nil
}

// Initialise rescales the controller's 0..127 range.
func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	minima, _ := params.Float(p, "minima", 0)
	maxima, _ := params.Float(p, "maxima", 1)
	b.midi.Set("minimum", minima)
	b.midi.Set("maximum", maxima)
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type:     "midi_control_input",
		AlwaysOn: true,
		New: func(p map[string]any) (module.Behavior, error) {
			controlNumber, _ := params.Int(p, "midi_control_number", 0)
			channel, _ := params.Int(p, "midi_channel", 0)
			initialValue, _ := params.Float(p, "initial_value", 0)
			return &behavior{
				controlNumber: controlNumber,
				channel:       channel,
				initialValue:  initialValue,
			}, nil
		},
	})
}
