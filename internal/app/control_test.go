package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/cue"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	reg := registry.New()
	for _, mod := range coreModules {
		mod.Register(reg)
	}

	engine := signal.NewOffline()
	model := &config.Model{
		Modules: []*config.ModuleConfig{
			{Type: "sine", Key: "a", AutoStop: true},
			{
				Type: "mixer", Key: "master", AutoStop: true,
				SendToPhysicalOutput: true,
				Bindings:             map[string]string{"audio_input_0": "sine.a"},
			},
		},
	}
	container, err := module.NewContainer(ctx, model, reg.Descriptors(), engine)
	require.NoError(t, err)

	cues := []*cue.Cue{
		cue.New(container, "intro", []*config.CueEntry{{Type: "sine", Key: "a"}}),
		cue.New(container, "outro", nil),
	}
	manager, err := cue.NewManager(ctx, cues)
	require.NoError(t, err)

	return &App{
		outW:      io.Discard,
		logger:    logger,
		registry:  reg,
		engine:    engine,
		container: container,
		manager:   manager,
	}
}

func TestControlServer(t *testing.T) {
	newServer := func(t *testing.T) (*App, *httptest.Server) {
		app := newTestApp(t)
		server := httptest.NewServer((&controlServer{app: app}).handler())
		t.Cleanup(server.Close)
		return app, server
	}

	getStatus := func(t *testing.T, resp *http.Response) statusResponse {
		t.Helper()
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var status statusResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		return status
	}

	t.Run("status reports the cue list", func(t *testing.T) {
		_, server := newServer(t)
		resp, err := http.Get(server.URL + "/status")
		require.NoError(t, err)
		status := getStatus(t, resp)

		assert.Equal(t, 0, status.CurrentCueIndex)
		assert.Equal(t, "intro", status.CurrentCueName)
		assert.Equal(t, []string{"intro", "outro"}, status.CueNames)
		assert.False(t, status.IsPlaying)
	})

	t.Run("navigation endpoints move the cue index", func(t *testing.T) {
		_, server := newServer(t)

		resp, err := http.Post(server.URL+"/next", "", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, getStatus(t, resp).CurrentCueIndex)

		resp, err = http.Post(server.URL+"/previous", "", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, getStatus(t, resp).CurrentCueIndex)

		resp, err = http.Post(server.URL+"/jump/-1", "", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, getStatus(t, resp).CurrentCueIndex)
	})

	t.Run("jump rejects a non-integer index", func(t *testing.T) {
		_, server := newServer(t)
		resp, err := http.Post(server.URL+"/jump/two", "", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("play and stop toggle the current cue", func(t *testing.T) {
		app, server := newServer(t)

		resp, err := http.Post(server.URL+"/play", "", nil)
		require.NoError(t, err)
		assert.True(t, getStatus(t, resp).IsPlaying)
		assert.True(t, app.manager.IsPlaying())

		resp, err = http.Post(server.URL+"/stop", "", nil)
		require.NoError(t, err)
		assert.False(t, getStatus(t, resp).IsPlaying)
	})

	t.Run("health endpoint responds", func(t *testing.T) {
		_, server := newServer(t)
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
