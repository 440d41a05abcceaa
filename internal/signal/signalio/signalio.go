// Package signalio implements the signal engine boundary over a socket.io
// connection. The audio server process exposes a namespace that accepts
// one event per engine command; commands are fire-and-forget so the
// control thread never blocks on the audio process.
package signalio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/signal"
)

// Options configures the connection to the audio server.
type Options struct {
	// URL is the socket.io endpoint, e.g. "http://127.0.0.1:9001/engine".
	URL string

	// Namespace is the socket.io namespace, "/" when empty.
	Namespace string

	// ConnectTimeout bounds the initial connection handshake.
	ConnectTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Engine is a signal.Engine talking to a remote audio server.
type Engine struct {
	io *socket.Socket

	mu    sync.Mutex
	units map[string]*remoteUnit
}

// Dial connects to the audio server and blocks until the connection is
// established or the timeout elapses.
func Dial(ctx context.Context, opts Options) (*Engine, error) {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL)

	timeout := opts.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audio server URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	socketOpts := socket.DefaultOptions()
	socketOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		socketOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	socketOpts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, socketOpts)
	io := manager.Socket(opts.Namespace, socketOpts)

	var isConnected atomic.Bool
	done := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		if isConnected.CompareAndSwap(false, true) {
			logger.Info("Connected to audio server.", "sid", io.Id())
			done <- nil
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- err
			return
		}
		done <- fmt.Errorf("connect error: %v", errs[0])
	})

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	io.Connect()

	select {
	case <-opCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for audio server connection")
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to audio server: %w", err)
		}
	}

	return &Engine{io: io, units: make(map[string]*remoteUnit)}, nil
}

// NewUnit implements signal.Engine. The server instantiates the processing
// primitive and addresses it by name from then on.
func (e *Engine) NewUnit(kind, name string) (signal.Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.units[name]; exists {
		return nil, fmt.Errorf("unit %q already exists", name)
	}
	e.io.Emit("unit/new", map[string]any{"kind": kind, "name": name})
	u := &remoteUnit{engine: e, name: name}
	e.units[name] = u
	return u, nil
}

// Drain implements signal.Engine: it asks the server to finish scheduled
// fades and waits for the acknowledgment that the output is silent.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{}, 1)
	// One-shot: a later Drain must not pile a second handler on the event.
	e.io.Once(types.EventName("drained"), func(...any) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	e.io.Emit("drain", nil)

	select {
	case <-ctx.Done():
		return fmt.Errorf("audio server did not acknowledge drain: %w", ctx.Err())
	case <-done:
		return nil
	}
}

// Close disconnects from the audio server.
func (e *Engine) Close() {
	e.io.Disconnect()
}

type remoteUnit struct {
	engine *Engine
	name   string

	producing atomic.Bool
}

func (u *remoteUnit) Play(duration, delay float64) {
	u.producing.Store(true)
	u.engine.io.Emit("unit/play", map[string]any{
		"name": u.name, "duration": duration, "delay": delay,
	})
}

func (u *remoteUnit) Stop(wait float64) {
	u.producing.Store(false)
	u.engine.io.Emit("unit/stop", map[string]any{"name": u.name, "wait": wait})
}

func (u *remoteUnit) Set(param string, value any) {
	// A unit passed as a value is a patch edge; it travels as the target
	// unit's name.
	if ref, ok := value.(*remoteUnit); ok {
		value = ref.name
	}
	u.engine.io.Emit("unit/set", map[string]any{
		"name": u.name, "param": param, "value": value,
	})
}

func (u *remoteUnit) Out(channel int) {
	u.engine.io.Emit("unit/out", map[string]any{"name": u.name, "channel": channel})
}

func (u *remoteUnit) Producing() bool {
	return u.producing.Load()
}
