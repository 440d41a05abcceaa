// Package parameter provides a time-varying control signal. Its value is
// either a plain number or a breakpoint envelope, a list of [time, value]
// pairs interpolated linearly or exponentially.
package parameter

import (
	"context"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const defaultEnvelopeType = "linear"

var envelopeTypes = map[string]bool{
	"linear":      true,
	"exponential": true,
}

type behavior struct {
	module.SettableMarker

	envelope signal.Unit
	duration float64
}

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	env, err := host.NewUnit("envelope")
	if err != nil {
		return err
	}
	b.envelope = env
	host.SetOutput(env)
	return nil
}

func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	rise, _ := params.Float(p, "rise_time", 0.001)
	fall, _ := params.Float(p, "fall_time", 0.001)
	b.envelope.Set("rise_time", rise)
	b.envelope.Set("fall_time", fall)

	value, ok := p["value"]
	if !ok {
		value = 0.0
	}
	if points, isEnvelope := params.FloatPairs(value); isEnvelope {
		envelopeType, _ := params.String(p, "envelope_type", defaultEnvelopeType)
		if !envelopeTypes[envelopeType] {
			ctxlog.FromContext(ctx).Warn("Undefined envelope type, falling back to linear.",
				"module", host.Name(), "envelope_type", envelopeType)
			envelopeType = defaultEnvelopeType
		}
		b.envelope.Set("envelope_type", envelopeType)
		b.envelope.Set("points", points)
		b.duration = 0
		if len(points) > 0 {
			b.duration = points[len(points)-1][0]
		}
		return nil
	}

	v, _ := params.Float(p, "value", 0)
	b.envelope.Set("value", v)
	b.duration = 0
	return nil
}

func (b *behavior) Duration() float64 { return b.duration }

// JumpTo moves the envelope's transport position.
func (b *behavior) JumpTo(ctx context.Context, host *module.Module, seconds float64) {
	b.envelope.Set("time", seconds)
}

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type: "parameter",
		New: func(p map[string]any) (module.Behavior, error) {
			return &behavior{}, nil
		},
	})
}
