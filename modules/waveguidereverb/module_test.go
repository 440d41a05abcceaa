package waveguidereverb

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

func TestWaveguideReverb(t *testing.T) {
	r := registry.New()
	(&value.Module{}).Register(r)
	(&Module{}).Register(r)

	engine := signal.NewOffline()
	_, err := module.NewContainer(testCtx(), &config.Model{Modules: []*config.ModuleConfig{
		{Type: "waveguide_reverb", Key: "room", AutoStop: true},
	}}, r.Descriptors(), engine)
	require.NoError(t, err)

	reverb := engine.Unit("reverb", "waveguide_reverb.room/reverb#1")
	require.NotNil(t, reverb)

	for name, want := range map[string]float64{
		"balance":          1.0,
		"cutoff_frequency": 6000.0,
		"feedback":         0.6,
	} {
		child := engine.Unit("constant",
			"value.waveguide_reverb_room_child_"+name+"/constant#1")
		require.NotNil(t, child, name)
		assert.Equal(t, want, child.Param("value"), name)
	}
}
