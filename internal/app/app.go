package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/cue"
	"github.com/vk/cueflow/internal/module"
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/internal/signal"
	"github.com/vk/cueflow/internal/signal/signalio"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	engine    signal.Engine
	container *module.Container
	manager   *cue.Manager
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration and structural problems are fatal at this point, before any
// sound is produced, and surface as panics the entrypoint recovers from.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All module types registered.", "count", len(modules))

	engine, err := newEngine(ctx, appConfig)
	if err != nil {
		panic(fmt.Errorf("failed to reach the signal engine: %w", err))
	}

	container, err := module.NewContainer(ctx, cfgModel, reg.Descriptors(), engine)
	if err != nil {
		panic(fmt.Errorf("failed to build the module graph: %w", err))
	}
	logger.Debug("Module container prepared.", "module_count", len(container.Modules()))

	cues := make([]*cue.Cue, 0, len(cfgModel.Cues))
	for _, cueConfig := range cfgModel.Cues {
		cues = append(cues, cue.New(container, cueConfig.Name, cueConfig.Entries))
	}
	manager, err := cue.NewManager(ctx, cues)
	if err != nil {
		panic(fmt.Errorf("failed to build the cue list: %w", err))
	}
	logger.Info("Cue list ready.", "cues", manager.CueNames())

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		engine:    engine,
		container: container,
		manager:   manager,
	}
}

// newEngine connects to the configured audio server, or falls back to the
// offline command recorder when no server is configured.
func newEngine(ctx context.Context, appConfig *Config) (signal.Engine, error) {
	if appConfig.AudioServerURL == "" {
		ctxlog.FromContext(ctx).Warn("No audio server configured, running with the offline engine.")
		return signal.NewOffline(), nil
	}
	return signalio.Dial(ctx, signalio.Options{URL: appConfig.AudioServerURL})
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Manager returns the cue manager. This is primarily for testing.
func (a *App) Manager() *cue.Manager {
	return a.manager
}
