// Package audioinput provides a physical input channel of the signal
// engine's audio interface.
package audioinput

import (
	"context"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type behavior struct {
	channelIndex int
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	in, err := host.NewUnit("audio_in")
	if err != nil {
		return err
	}
	in.Set("channel", b.channelIndex)
	in.Set("decibel", host.InputModule("decibel").Output())
	host.SetOutput(in)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type:  "audio_input",
		Slots: []module.Slot{value.DecibelSlot()},
		New: func(p map[string]any) (module.Behavior, error) {
			index, _ := params.Int(p, "input_channel_index", 0)
			return &behavior{channelIndex: index}, nil
		},
	})
}
