package signal

import (
	"context"
	"fmt"
	"sync"
)

// Command is one recorded engine instruction. The offline engine keeps the
// full command stream per unit so tests can assert on ordering and timing.
type Command struct {
	Op       string
	Duration float64
	Delay    float64
	Wait     float64
	Param    string
	Value    any
	Channel  int
}

// Offline is an in-process Engine used by tests and by the -offline CLI
// mode. It records every command instead of producing sound.
type Offline struct {
	mu    sync.Mutex
	units map[string]*OfflineUnit
}

// NewOffline returns an empty offline engine.
func NewOffline() *Offline {
	return &Offline{units: make(map[string]*OfflineUnit)}
}

// NewUnit implements Engine.
func (e *Offline) NewUnit(kind, name string) (Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := kind + ":" + name
	if _, exists := e.units[id]; exists {
		return nil, fmt.Errorf("offline engine: unit %q already exists", id)
	}
	u := &OfflineUnit{Kind: kind, Name: name}
	e.units[id] = u
	return u, nil
}

// Drain implements Engine. The offline engine is always silent, so it
// acknowledges immediately unless the context is already done.
func (e *Offline) Drain(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Unit looks up a previously created unit, for test assertions.
func (e *Offline) Unit(kind, name string) *OfflineUnit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.units[kind+":"+name]
}

// OfflineUnit records the command stream issued to one unit.
type OfflineUnit struct {
	Kind string
	Name string

	mu        sync.Mutex
	producing bool
	commands  []Command
	params    map[string]any
}

// Play implements Unit.
func (u *OfflineUnit) Play(duration, delay float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.producing = true
	u.commands = append(u.commands, Command{Op: "play", Duration: duration, Delay: delay})
}

// Stop implements Unit.
func (u *OfflineUnit) Stop(wait float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.producing = false
	u.commands = append(u.commands, Command{Op: "stop", Wait: wait})
}

// Set implements Unit.
func (u *OfflineUnit) Set(param string, value any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.params == nil {
		u.params = make(map[string]any)
	}
	u.params[param] = value
	u.commands = append(u.commands, Command{Op: "set", Param: param, Value: value})
}

// Out implements Unit.
func (u *OfflineUnit) Out(channel int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commands = append(u.commands, Command{Op: "out", Channel: channel})
}

// Producing implements Unit.
func (u *OfflineUnit) Producing() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.producing
}

// Commands returns a copy of the recorded command stream.
func (u *OfflineUnit) Commands() []Command {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Command, len(u.commands))
	copy(out, u.commands)
	return out
}

// Param returns the last value set for a parameter.
func (u *OfflineUnit) Param(name string) any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.params[name]
}
