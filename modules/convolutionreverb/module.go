// Package convolutionreverb provides a reverb that convolves one audio
// input with an impulse response read from disk by the audio server.
package convolutionreverb

import (
	"context"
	"errors"

	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type behavior struct {
	impulsePath string
	sampleSize  int
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	reverb, err := host.NewUnit("convolution")
	if err != nil {
		return err
	}
	reverb.Set("source", host.InputModule("audio_input").Output())
	reverb.Set("impulse_path", b.impulsePath)
	reverb.Set("sample_size", b.sampleSize)
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
		Type: "convolution_reverb",
		Slots: []module.Slot{
			{
				Name:    "audio_input",
				Default: module.NewCatch(module.EmptyName, true),
			},
			{
				Name:    "balance",
				Default: module.NewAutoSetup("value", map[string]any{"value": 1.0}, true),
			},
			value.DecibelSlot(),
		},
		New: func(p map[string]any) (module.Behavior, error) {
			path, _ := params.String(p, "impulse_path", "")
			if path == "" {
				return nil, errors.New("missing required parameter 'impulse_path'")
			}
			size, _ := params.Int(p, "sample_size", 1024)
			return &behavior{impulsePath: path, sampleSize: size}, nil
		},
	})
}
