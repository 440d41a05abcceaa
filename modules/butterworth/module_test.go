package butterworth

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

func TestButterworth(t *testing.T) {
	r := registry.New()
	(&value.Module{}).Register(r)
	(&Module{}).Register(r)

	engine := signal.NewOffline()
	_, err := module.NewContainer(testCtx(), &config.Model{Modules: []*config.ModuleConfig{
		{Type: "butterworth_lowpass_filter", Key: "bass", AutoStop: true},
		{Type: "butterworth_highpass_filter", Key: "air", AutoStop: true},
	}}, r.Descriptors(), engine)
	require.NoError(t, err)

	t.Run("both variants build their filter unit", func(t *testing.T) {
		low := engine.Unit("lowpass", "butterworth_lowpass_filter.bass/lowpass#1")
		require.NotNil(t, low)
		high := engine.Unit("highpass", "butterworth_highpass_filter.air/highpass#1")
		require.NotNil(t, high)
	})

	t.Run("cutoff frequency defaults per instance", func(t *testing.T) {
		freq := engine.Unit("constant",
			"value.butterworth_lowpass_filter_bass_child_frequency/constant#1")
		require.NotNil(t, freq)
		assert.Equal(t, 1000.0, freq.Param("value"))
	})
}
