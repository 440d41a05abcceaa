package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/cueflow/internal/ctxlog"
)

// shutdownGrace bounds how long shutdown waits for the control server and
// for the signal engine's drain acknowledgment.
const shutdownGrace = 10 * time.Second

// Run serves the control surface until the context is cancelled, then
// closes the module graph and drains the signal engine.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var server interface {
		Shutdown(ctx context.Context) error
	}
	if appConfig.ControlPort > 0 {
		server = a.startControlServer(appConfig.ControlPort)
	} else {
		a.logger.Warn("Control port disabled, cue navigation is only reachable from tests.")
	}

	<-ctx.Done()
	a.logger.Info("Shutting down.")

	graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	graceCtx = ctxlog.WithLogger(graceCtx, a.logger)

	if server != nil {
		if err := server.Shutdown(graceCtx); err != nil {
			a.logger.Warn("Control server shutdown was not clean.", "error", err)
		}
	}

	if err := a.container.Close(graceCtx); err != nil {
		return fmt.Errorf("failed to close the module graph: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
