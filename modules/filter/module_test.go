package filter

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
	"github.com/vk/cueflow/modules/value"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func newTestContainer(t *testing.T, params map[string]any) (*module.Container, *signal.Offline) {
	t.Helper()
	r := registry.New()
	(&value.Module{}).Register(r)
	(&Module{}).Register(r)
	engine := signal.NewOffline()
	c, err := module.NewContainer(testCtx(), &config.Model{Modules: []*config.ModuleConfig{
		{Type: "filter", Key: "low", AutoStop: true, Params: params},
	}}, r.Descriptors(), engine)
	require.NoError(t, err)
	return c, engine
}

func TestFilter(t *testing.T) {
	t.Run("constructor parameters and control defaults reach the unit", func(t *testing.T) {
		_, engine := newTestContainer(t, map[string]any{"stages": 2.0, "filter_type": "bandpass"})

		f := engine.Unit("filter", "filter.low/filter#1")
		require.NotNil(t, f)
		assert.Equal(t, 2, f.Param("stages"))
		assert.Equal(t, 2, f.Param("filter_type"))

		freq := engine.Unit("constant", "value.filter_low_child_frequency/constant#1")
		require.NotNil(t, freq)
		assert.Equal(t, 1000.0, freq.Param("value"))

		q := engine.Unit("constant", "value.filter_low_child_q/constant#1")
		require.NotNil(t, q)
		assert.Equal(t, 5.0, q.Param("value"))
	})

	t.Run("undefined filter type falls back to lowpass", func(t *testing.T) {
		_, engine := newTestContainer(t, map[string]any{"filter_type": "wonky"})

		f := engine.Unit("filter", "filter.low/filter#1")
		require.NotNil(t, f)
		assert.Equal(t, 0, f.Param("filter_type"))
	})
}
