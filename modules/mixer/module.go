// Package mixer provides a many-to-many routing stage. Each audio input
// slot is an explicit Catch binding with the implicit flag off, so feeding
// a module into a mixer does not activate it on its own; a cue still has
// to name the feeding module.
package mixer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/params"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
	"github.com/vk/cueflow/modules/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const audioInputPrefix = "audio_input_"

type behavior struct {
	inputCount int
	mapping    channelMapping

	mixer signal.Unit
}

// channelMapping routes input channel index to output channel indices.
type channelMapping map[int][]int

func (b *behavior) Build(ctx context.Context, host *module.Module) error {
	mix, err := host.NewUnit("mixer")
	if err != nil {
		return err
	}
	b.mixer = mix
	for i := 0; i < b.inputCount; i++ {
		slot := fmt.Sprintf("%s%d", audioInputPrefix, i)
		in := host.InputModule(slot)
		if in == nil || in.Name() == module.EmptyName {
			continue
		}
		mix.Set(slot, in.Output())
	}
	mix.Set("decibel", host.InputModule("decibel").Output())

	outputChannels := 0
	for input, outputs := range b.mapping {
		for _, output := range outputs {
			mix.Set(fmt.Sprintf("route_%d_%d", input, output), 1.0)
			if output+1 > outputChannels {
				outputChannels = output + 1
			}
		}
	}
	host.SetOutput(mix)
	host.SetOutputChannels(outputChannels)
	return nil
}

// Initialise accepts per-input routing overrides of the form
// "audio_input_<i>_channel_mapping".
func (b *behavior) Initialise(ctx context.Context, host *module.Module, p map[string]any) error {
	logger := ctxlog.FromContext(ctx)

	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		slot, found := strings.CutSuffix(key, "_channel_mapping")
		if !found {
			logger.Warn("Ignoring unknown mixer parameter.",
				"module", host.Name(), "parameter", key)
			continue
		}
		if host.InputModule(slot) == nil {
			logger.Warn("Channel mapping names an undeclared input, ignoring it.",
				"module", host.Name(), "parameter", key)
			continue
		}
		mapping, err := parseChannelMapping(p[key])
		if err != nil {
			return fmt.Errorf("parameter '%s': %w", key, err)
		}
		for input, outputs := range mapping {
			for _, output := range outputs {
				b.mixer.Set(fmt.Sprintf("%s_route_%d_%d", slot, input, output), 1.0)
			}
		}
	}
	return nil
}

func (b *behavior) Duration() float64 { return 0 }

// parseChannelMapping reads a configuration object whose keys are input
// channel indices and whose values are one output channel or a list of
// output channels.
func parseChannelMapping(v any) (channelMapping, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("channel mapping must be an object, got %T", v)
	}
	mapping := make(channelMapping, len(raw))
	for key, value := range raw {
		input, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("channel index '%s' is not an integer", key)
		}
		var outputs []int
		switch out := value.(type) {
		case float64:
			outputs = []int{int(out)}
		case int:
			outputs = []int{out}
		case []any:
			for _, item := range out {
				n, ok := item.(float64)
				if !ok {
					return nil, fmt.Errorf("output channel for input %d is not a number", input)
				}
				outputs = append(outputs, int(n))
			}
		default:
			return nil, fmt.Errorf("output channels for input %d must be a number or a list", input)
		}
		mapping[input] = outputs
	}
	return mapping, nil
}

func slotsFor(p map[string]any) []module.Slot {
	count, _ := params.Int(p, "input_count", 2)
	if count < 1 {
		count = 1
	}
	slots := make([]module.Slot, 0, count+1)
	for i := 0; i < count; i++ {
		slots = append(slots, module.Slot{
			Name:    fmt.Sprintf("%s%d", audioInputPrefix, i),
			Default: module.NewCatch(module.EmptyName, false),
		})
	}
	return append(slots, value.DecibelSlot())
}

// Register registers the module type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&module.Descriptor{
		Type:     "mixer",
		SlotsFor: slotsFor,
		New: func(p map[string]any) (module.Behavior, error) {
			mapping := channelMapping{0: {0}, 1: {1}}
			if raw, ok := p["channel_mapping"]; ok {
				parsed, err := parseChannelMapping(raw)
				if err != nil {
					return nil, err
				}
				mapping = parsed
			}
			count, _ := params.Int(p, "input_count", 2)
			if count < 1 {
				count = 1
			}
			return &behavior{inputCount: count, mapping: mapping}, nil
		},
	})
}
