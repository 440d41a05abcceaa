package cue

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
	"github.com/vk/cueflow/modules/mixer"
	"github.com/vk/cueflow/modules/parameter"
	"github.com/vk/cueflow/modules/sine"
	"github.com/vk/cueflow/modules/value"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func testRegistry() *registry.Registry {
	r := registry.New()
	for _, mod := range []registry.Module{
		&value.Module{},
		&parameter.Module{},
		&sine.Module{},
		&mixer.Module{},
	} {
		mod.Register(r)
	}
	return r
}

func newTestContainer(t *testing.T, modules ...*config.ModuleConfig) (*module.Container, *signal.Offline) {
	t.Helper()
	engine := signal.NewOffline()
	c, err := module.NewContainer(testCtx(), &config.Model{Modules: modules}, testRegistry().Descriptors(), engine)
	require.NoError(t, err)
	return c, engine
}

func moduleConfig(moduleType, key string, mutate func(*config.ModuleConfig)) *config.ModuleConfig {
	mc := &config.ModuleConfig{Type: moduleType, Key: key, AutoStop: true}
	if mutate != nil {
		mutate(mc)
	}
	return mc
}

// sineIntoMixer is the smallest realistic graph: one oscillator routed
// into a physically routed master mixer.
func sineIntoMixer(t *testing.T) (*module.Container, *signal.Offline) {
	return newTestContainer(t,
		moduleConfig("sine", "modern", nil),
		moduleConfig("mixer", "master_output", func(mc *config.ModuleConfig) {
			mc.SendToPhysicalOutput = true
			mc.Bindings = map[string]string{"audio_input_0": "sine.modern"}
		}),
	)
}

func entry(moduleType, key string, params map[string]any) *config.CueEntry {
	return &config.CueEntry{Type: moduleType, Key: key, Params: params}
}

func names(modules []*module.Module) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.Name()
	}
	return out
}

func TestActiveModuleCollections(t *testing.T) {
	container, _ := sineIntoMixer(t)
	ctx := testCtx()

	c := New(container, "1", []*config.CueEntry{
		entry("sine", "modern", map[string]any{"frequency": 99.0}),
	})

	t.Run("main modules follow declaration order", func(t *testing.T) {
		assert.Equal(t, []string{"sine.modern"}, names(c.ActiveMainModules(ctx)))
	})

	t.Run("dependency modules cover the full chain of every main", func(t *testing.T) {
		deps := names(c.ActiveDependencyModules(ctx))
		assert.Contains(t, deps, "value.sine_modern_child_frequency")
		assert.Contains(t, deps, "value.sine_modern_child_decibel")
		assert.Contains(t, deps, "mixer.master_output")
		assert.NotContains(t, deps, "sine.modern")
	})

	t.Run("no dependency appears twice", func(t *testing.T) {
		seen := make(map[string]int)
		for _, name := range names(c.ActiveDependencyModules(ctx)) {
			seen[name]++
		}
		for name, count := range seen {
			assert.Equal(t, 1, count, "module %s duplicated", name)
		}
	})

	t.Run("active set is dependencies then mains, deduplicated", func(t *testing.T) {
		var expected []*module.Module
		for _, m := range append(append([]*module.Module(nil),
			c.ActiveDependencyModules(ctx)...), c.ActiveMainModules(ctx)...) {
			expected = appendUnique(expected, m)
		}
		assert.Equal(t, expected, c.ActiveModules(ctx))
	})

	t.Run("entries addressing unknown modules warn and are skipped", func(t *testing.T) {
		broken := New(container, "broken", []*config.CueEntry{
			entry("sine", "missing", nil),
			entry("sine", "modern", nil),
		})
		assert.Equal(t, []string{"sine.modern"}, names(broken.ActiveMainModules(ctx)))
	})
}

func TestActivate(t *testing.T) {
	t.Run("entry parameters reach auto-created control modules", func(t *testing.T) {
		container, engine := sineIntoMixer(t)
		ctx := testCtx()
		c := New(container, "1", []*config.CueEntry{
			entry("sine", "modern", map[string]any{"frequency": 99.0}),
		})

		c.Activate(ctx)

		freq := engine.Unit("constant", "value.sine_modern_child_frequency/constant#1")
		require.NotNil(t, freq)
		assert.Equal(t, 99.0, freq.Param("value"))
	})

	t.Run("untouched active modules fall back to their defaults", func(t *testing.T) {
		container, engine := newTestContainer(t,
			moduleConfig("sine", "modern", func(mc *config.ModuleConfig) {
				mc.Defaults = map[string]any{"frequency": 440.0}
			}),
			moduleConfig("mixer", "master_output", func(mc *config.ModuleConfig) {
				mc.SendToPhysicalOutput = true
				mc.Bindings = map[string]string{"audio_input_0": "sine.modern"}
			}),
		)
		ctx := testCtx()
		c := New(container, "1", []*config.CueEntry{
			entry("mixer", "master_output", nil),
		})

		c.Activate(ctx)

		// sine.modern is in the cue only as a dependency, but its stored
		// defaults still apply.
		freq := engine.Unit("constant", "value.sine_modern_child_frequency/constant#1")
		require.NotNil(t, freq)
		assert.Equal(t, 440.0, freq.Param("value"))
	})

	t.Run("duration is the maximum across the active set", func(t *testing.T) {
		container, _ := newTestContainer(t,
			moduleConfig("parameter", "env", func(mc *config.ModuleConfig) {
				mc.SendToPhysicalOutput = true
			}),
		)
		ctx := testCtx()
		c := New(container, "1", []*config.CueEntry{
			entry("parameter", "env", map[string]any{
				"value": []any{[]any{0.0, 0.0}, []any{5.0, 1.0}},
			}),
		})

		assert.Zero(t, c.Duration())
		c.Activate(ctx)
		assert.Equal(t, 5.0, c.Duration())
	})

	t.Run("force stop entries stop regardless of auto stop", func(t *testing.T) {
		container, _ := newTestContainer(t,
			moduleConfig("sine", "drone", func(mc *config.ModuleConfig) {
				mc.AutoStop = false
				mc.SendToPhysicalOutput = true
			}),
		)
		ctx := testCtx()
		drone, err := container.ModuleByName("sine.drone")
		require.NoError(t, err)
		drone.Play(0, 0)
		require.True(t, drone.IsPlaying())

		c := New(container, "1", []*config.CueEntry{
			{Type: "sine", Key: "drone", ForceStop: true},
		})
		c.Activate(ctx)

		assert.False(t, drone.IsPlaying())
	})

	t.Run("activating twice with identical entries is idempotent", func(t *testing.T) {
		container, engine := sineIntoMixer(t)
		ctx := testCtx()
		c := New(container, "1", []*config.CueEntry{
			entry("sine", "modern", map[string]any{"frequency": 99.0}),
		})

		c.Activate(ctx)
		freq := engine.Unit("constant", "value.sine_modern_child_frequency/constant#1")
		require.NotNil(t, freq)
		first := freq.Param("value")
		duration := c.Duration()

		c.Activate(ctx)
		assert.Equal(t, first, freq.Param("value"))
		assert.Equal(t, duration, c.Duration())
	})
}

func TestStopTiming(t *testing.T) {
	// Two oscillators with different fade-outs share the master mixer.
	// The mixer may only stop once the slowest fade has run out.
	container, engine := newTestContainer(t,
		moduleConfig("sine", "slow", func(mc *config.ModuleConfig) {
			mc.FadeOutDuration = 3.0
		}),
		moduleConfig("sine", "fast", func(mc *config.ModuleConfig) {
			mc.FadeOutDuration = 1.0
		}),
		moduleConfig("mixer", "master_output", func(mc *config.ModuleConfig) {
			mc.SendToPhysicalOutput = true
			mc.Bindings = map[string]string{
				"audio_input_0": "sine.slow",
				"audio_input_1": "sine.fast",
			}
		}),
	)
	ctx := testCtx()

	c := New(container, "1", []*config.CueEntry{
		entry("sine", "slow", nil),
		entry("sine", "fast", nil),
	})
	c.Activate(ctx)
	c.Play(ctx)
	c.Stop(ctx, 0)

	slowFader := engine.Unit("fader", "sine.slow/fader#0")
	require.NotNil(t, slowFader)
	commands := slowFader.Commands()
	last := commands[len(commands)-1]
	assert.Equal(t, "stop", last.Op)
	assert.Equal(t, 0.0, last.Wait)

	mixerFader := engine.Unit("fader", "mixer.master_output/fader#0")
	require.NotNil(t, mixerFader)
	commands = mixerFader.Commands()
	last = commands[len(commands)-1]
	assert.Equal(t, "stop", last.Op)
	assert.Equal(t, 3.0, last.Wait, "dependency must wait for the slowest dependent fade")
}

func TestManager(t *testing.T) {
	newManager := func(t *testing.T) (*Manager, *module.Container, *signal.Offline) {
		container, engine := newTestContainer(t,
			moduleConfig("sine", "a", nil),
			moduleConfig("sine", "b", nil),
			moduleConfig("mixer", "master_output", func(mc *config.ModuleConfig) {
				mc.SendToPhysicalOutput = true
				mc.Bindings = map[string]string{
					"audio_input_0": "sine.a",
					"audio_input_1": "sine.b",
				}
			}),
		)
		cues := []*Cue{
			New(container, "1", []*config.CueEntry{
				entry("sine", "a", nil),
				entry("sine", "b", nil),
			}),
			New(container, "2", []*config.CueEntry{
				entry("sine", "b", nil),
			}),
			New(container, "3", []*config.CueEntry{
				entry("sine", "a", nil),
			}),
		}
		m, err := NewManager(testCtx(), cues)
		require.NoError(t, err)
		return m, container, engine
	}

	t.Run("construction requires unique names and at least one cue", func(t *testing.T) {
		_, err := NewManager(testCtx(), nil)
		assert.Error(t, err)

		container, _ := sineIntoMixer(t)
		_, err = NewManager(testCtx(), []*Cue{
			New(container, "1", nil),
			New(container, "1", nil),
		})
		assert.ErrorContains(t, err, "duplicate cue name")
	})

	t.Run("starts at the first cue, activated but not playing", func(t *testing.T) {
		m, _, _ := newManager(t)
		assert.Equal(t, 0, m.CurrentCueIndex())
		assert.Equal(t, []string{"1", "2", "3"}, m.CueNames())
		assert.False(t, m.IsPlaying())
	})

	t.Run("navigation wraps around", func(t *testing.T) {
		m, _, _ := newManager(t)
		m.MoveToPreviousCue(testCtx())
		assert.Equal(t, 2, m.CurrentCueIndex())
		m.MoveToNextCue(testCtx())
		assert.Equal(t, 0, m.CurrentCueIndex())
		m.JumpToCue(testCtx(), -1)
		assert.Equal(t, 2, m.CurrentCueIndex())
		m.JumpToCue(testCtx(), 4)
		assert.Equal(t, 1, m.CurrentCueIndex())
	})

	t.Run("switching cues keeps shared modules playing", func(t *testing.T) {
		m, container, engine := newManager(t)
		ctx := testCtx()
		m.Play(ctx)
		require.True(t, m.IsPlaying())

		a, err := container.ModuleByName("sine.a")
		require.NoError(t, err)
		b, err := container.ModuleByName("sine.b")
		require.NoError(t, err)
		bFader := engine.Unit("fader", "sine.b/fader#0")
		require.NotNil(t, bFader)
		bCommands := len(bFader.Commands())

		m.MoveToNextCue(ctx)

		assert.Equal(t, 1, m.CurrentCueIndex())
		assert.False(t, a.IsPlaying(), "exclusive module of the outgoing cue must stop")
		assert.True(t, b.IsPlaying(), "shared module must keep playing")
		assert.True(t, m.IsPlaying(), "playback resumes on the incoming cue")

		// No stop may have been scheduled for the shared module.
		for _, cmd := range bFader.Commands()[bCommands:] {
			assert.NotEqual(t, "stop", cmd.Op)
		}
	})

	t.Run("switching while stopped does not start playback", func(t *testing.T) {
		m, _, _ := newManager(t)
		m.MoveToNextCue(testCtx())
		assert.False(t, m.IsPlaying())
	})

	t.Run("returning to the active cue does not reactivate it", func(t *testing.T) {
		m, _, engine := newManager(t)
		ctx := testCtx()
		m.JumpToCue(ctx, 0)

		freqA := engine.Unit("constant", "value.sine_a_child_frequency/constant#1")
		require.NotNil(t, freqA)
		count := len(freqA.Commands())

		m.JumpToCue(ctx, 0)
		assert.Len(t, freqA.Commands(), count)
	})
}
