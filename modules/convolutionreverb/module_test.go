package convolutionreverb

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

func testRegistry() *registry.Registry {
	r := registry.New()
	(&value.Module{}).Register(r)
	(&Module{}).Register(r)
	return r
}

func TestConvolutionReverb(t *testing.T) {
	t.Run("impulse path is required", func(t *testing.T) {
		engine := signal.NewOffline()
		_, err := module.NewContainer(testCtx(), &config.Model{Modules: []*config.ModuleConfig{
			{Type: "convolution_reverb", Key: "hall", AutoStop: true},
		}}, testRegistry().Descriptors(), engine)
		require.Error(t, err)
		assert.ErrorContains(t, err, "impulse_path")

		var configErr *module.ConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "convolution_reverb", configErr.Type)
		assert.Equal(t, "hall", configErr.Key)
	})

	t.Run("impulse path and sample size reach the unit", func(t *testing.T) {
		engine := signal.NewOffline()
		_, err := module.NewContainer(testCtx(), &config.Model{Modules: []*config.ModuleConfig{
			{Type: "convolution_reverb", Key: "hall", AutoStop: true,
				Params: map[string]any{"impulse_path": "ir/hall.wav"}},
		}}, testRegistry().Descriptors(), engine)
		require.NoError(t, err)

		reverb := engine.Unit("convolution", "convolution_reverb.hall/convolution#1")
		require.NotNil(t, reverb)
		assert.Equal(t, "ir/hall.wav", reverb.Param("impulse_path"))
		assert.Equal(t, 1024, reverb.Param("sample_size"))

		balance := engine.Unit("constant",
			"value.convolution_reverb_hall_child_balance/constant#1")
		require.NotNil(t, balance)
		assert.Equal(t, 1.0, balance.Param("value"))
	})
}
