// Package cue implements named activation snapshots over the module graph
// and the manager that sequences between them. A cue knows which modules
// it names explicitly (main modules), which further modules those pull in
// transitively (dependency modules), and how to hand a running signal path
// over to the next cue without audible artifacts.
package cue

import (
	"context"
	"sort"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/module"
)

// Cue is a named activation snapshot. It is immutable after construction
// except for its compute-once caches.
type Cue struct {
	name      string
	container *module.Container
	entries   []*config.CueEntry

	// Caches, each computed on first access. The module graph is frozen
	// by the time cues exist, so the results never change.
	mainModules []*module.Module
	mainDone    bool
	mainChains  map[*module.Module][]*module.Module
	depModules  []*module.Module
	depDone     bool
	depToMains  map[*module.Module][]*module.Module
	active      []*module.Module
	activeDone  bool

	// duration is meaningless before the first activation; module
	// durations only settle once their parameters are applied.
	duration    float64
	durationSet bool

	playing bool
}

// New builds a cue against a finished container.
func New(container *module.Container, name string, entries []*config.CueEntry) *Cue {
	return &Cue{name: name, container: container, entries: entries}
}

// Name returns the cue's unique name.
func (c *Cue) Name() string { return c.name }

// IsPlaying reports whether the cue is currently playing.
func (c *Cue) IsPlaying() bool { return c.playing }

// Duration is the maximum reported duration across the active set,
// computed once after first activation. Before activation it is zero.
func (c *Cue) Duration() float64 { return c.duration }

// ActiveMainModules returns the modules named explicitly by this cue's
// entries, in declaration order. Entries addressing unknown modules warn
// and are skipped.
func (c *Cue) ActiveMainModules(ctx context.Context) []*module.Module {
	if !c.mainDone {
		logger := ctxlog.FromContext(ctx)
		for _, entry := range c.entries {
			m, err := c.container.ModuleByName(entry.Type + "." + entry.Key)
			if err != nil {
				logger.Warn("Cue references an undefined module, ignoring the entry.",
					"cue", c.name, "type", entry.Type, "key", entry.Key)
				continue
			}
			c.mainModules = appendUnique(c.mainModules, m)
		}
		c.mainDone = true
	}
	return c.mainModules
}

// mainChainIndex maps each main module to its full module chain. The
// inverse mapping drives deactivation timing.
func (c *Cue) mainChainIndex(ctx context.Context) map[*module.Module][]*module.Module {
	if c.mainChains == nil {
		c.mainChains = make(map[*module.Module][]*module.Module)
		for _, main := range c.ActiveMainModules(ctx) {
			c.mainChains[main] = main.Chain()
		}
	}
	return c.mainChains
}

// ActiveDependencyModules returns the deduplicated, first-seen-order union
// of the full upstream chain of every main module.
func (c *Cue) ActiveDependencyModules(ctx context.Context) []*module.Module {
	if !c.depDone {
		chains := c.mainChainIndex(ctx)
		for _, main := range c.ActiveMainModules(ctx) {
			for _, dep := range chains[main] {
				c.depModules = appendUnique(c.depModules, dep)
			}
		}
		c.depDone = true
	}
	return c.depModules
}

// dependencyIndex maps each dependency module to the main modules whose
// chain contains it. A dependency may only stop after the slowest of those
// mains has faded out.
func (c *Cue) dependencyIndex(ctx context.Context) map[*module.Module][]*module.Module {
	if c.depToMains == nil {
		c.depToMains = make(map[*module.Module][]*module.Module)
		chains := c.mainChainIndex(ctx)
		for _, dep := range c.ActiveDependencyModules(ctx) {
			for _, main := range c.ActiveMainModules(ctx) {
				if containsModule(chains[main], dep) {
					c.depToMains[dep] = append(c.depToMains[dep], main)
				}
			}
		}
	}
	return c.depToMains
}

// ActiveModules is the complete activation set: dependency modules
// followed by main modules, deduplicated.
func (c *Cue) ActiveModules(ctx context.Context) []*module.Module {
	if !c.activeDone {
		for _, m := range c.ActiveDependencyModules(ctx) {
			c.active = appendUnique(c.active, m)
		}
		for _, m := range c.ActiveMainModules(ctx) {
			c.active = appendUnique(c.active, m)
		}
		c.activeDone = true
	}
	return c.active
}

// Activate replays every entry's initialisation parameters (or forces a
// stop), then (re)initialises any active module the entries left untouched
// with its stored defaults. Modules exposing a plain settable value go
// last so nested overrides from main modules win.
func (c *Cue) Activate(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	var touched []*module.Module
	for _, entry := range c.entries {
		m, err := c.container.ModuleByName(entry.Type + "." + entry.Key)
		if err != nil {
			logger.Warn("Cue references an undefined module, ignoring the entry.",
				"cue", c.name, "type", entry.Type, "key", entry.Key)
			continue
		}
		if entry.ForceStop {
			m.Stop(0)
			continue
		}
		touched = append(touched, m.Initialise(ctx, entry.Params)...)
	}

	c.setDuration(ctx)

	remaining := make([]*module.Module, 0, len(c.ActiveModules(ctx)))
	for _, m := range c.ActiveModules(ctx) {
		if !containsModule(touched, m) {
			remaining = append(remaining, m)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return !isSettable(remaining[i]) && isSettable(remaining[j])
	})
	for _, m := range remaining {
		if !containsModule(touched, m) {
			touched = append(touched, m.Initialise(ctx, nil)...)
		}
	}
}

func (c *Cue) setDuration(ctx context.Context) {
	if c.durationSet {
		return
	}
	for _, m := range c.ActiveModules(ctx) {
		if d := m.Duration(); d > c.duration {
			c.duration = d
		}
	}
	c.durationSet = true
}

// Play starts every module in the active set. Idempotent via the playing
// flag.
func (c *Cue) Play(ctx context.Context) {
	if c.playing {
		return
	}
	c.playing = true
	for _, m := range c.ActiveModules(ctx) {
		m.Play(0, 0)
	}
}

// Stop stops the whole active set with correct dependency timing.
func (c *Cue) Stop(ctx context.Context, wait float64) {
	if !c.playing {
		return
	}
	c.playing = false
	c.stop(ctx, wait, nil, false)
}

// Deactivate hands playback over to another cue: every main module not in
// the keep-playing set stops immediately (honoring auto-stop), every
// dependency module stops only after the longest fade-out among the main
// modules that depend on it, so shared signal paths keep sounding until
// their last consumer has faded.
func (c *Cue) Deactivate(ctx context.Context, keepPlaying []*module.Module) {
	if !c.playing {
		return
	}
	c.playing = false
	c.stop(ctx, 0, keepPlaying, true)
}

func (c *Cue) stop(ctx context.Context, wait float64, keepPlaying []*module.Module, applyAutoStop bool) {
	stopModule := func(m *module.Module, wait float64) {
		if containsModule(keepPlaying, m) {
			return
		}
		if applyAutoStop && !m.AutoStop() {
			return
		}
		m.Stop(wait)
	}

	// Main modules first; their exclusive dependencies follow once the
	// slowest dependent fade has run out.
	for _, main := range c.ActiveMainModules(ctx) {
		stopModule(main, wait)
	}
	index := c.dependencyIndex(ctx)
	for _, dep := range c.ActiveDependencyModules(ctx) {
		longest := 0.0
		for _, main := range index[dep] {
			if f := main.FadeOutDuration(); f > longest {
				longest = f
			}
		}
		stopModule(dep, longest+wait)
	}
}

// JumpTo forwards a transport-position seek to every active module.
func (c *Cue) JumpTo(ctx context.Context, seconds float64) {
	for _, m := range c.ActiveModules(ctx) {
		m.JumpTo(ctx, seconds)
	}
}

func isSettable(m *module.Module) bool {
	_, ok := m.Behavior().(module.Settable)
	return ok
}

func appendUnique(list []*module.Module, m *module.Module) []*module.Module {
	if containsModule(list, m) {
		return list
	}
	return append(list, m)
}

func containsModule(list []*module.Module, m *module.Module) bool {
	for _, existing := range list {
		if existing == m {
			return true
		}
	}
	return false
}
