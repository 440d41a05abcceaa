package module

import (
	"context"
	"strconv"
	"strings"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
	"github.com/vk/cueflow/internal/signal"
)

// Container is the single registry owning every module instance. It is
// built once from configuration and passed explicitly into every
// resolution call; there is no ambient registry.
type Container struct {
	modules map[string]map[string]*Module
	order   []*Module
	types   map[string]*Descriptor
	engine  signal.Engine

	emptyModule *Module
}

// NewContainer instantiates every configured module, prepares the whole
// graph in dependency order and validates its structure.
//
// Construction is the fail-fast half of the error policy: constructor
// errors and input cycles abort before any signal path plays. Resolution
// and routing problems only warn.
func NewContainer(ctx context.Context, cfg *config.Model, types map[string]*Descriptor, engine signal.Engine) (*Container, error) {
	logger := ctxlog.FromContext(ctx)
	c := &Container{
		modules: make(map[string]map[string]*Module),
		types:   types,
		engine:  engine,
	}

	// The reserved no-op module exists in every container.
	empty, err := newModule(ctx, emptyDescriptor, "empty", instanceConfig{autoStop: true}, engine)
	if err != nil {
		return nil, err
	}
	c.register(empty)
	c.emptyModule = empty

	for _, mc := range cfg.Modules {
		desc, ok := types[mc.Type]
		if !ok {
			logger.Warn("Found undefined module type, ignoring its configuration.", "type", mc.Type, "key", mc.Key)
			continue
		}
		if _, exists := c.modules[mc.Type][mc.Key]; exists {
			logger.Warn("Duplicate module definition found, it will be overwritten.", "type", mc.Type, "key", mc.Key)
		}
		m, err := newModule(ctx, desc, mc.Key, instanceConfig{
			send:     mc.SendToPhysicalOutput,
			autoStop: mc.AutoStop,
			fadeIn:   mc.FadeInDuration,
			fadeOut:  mc.FadeOutDuration,
			bindings: mc.Bindings,
			defaults: mc.Defaults,
			params:   mc.Params,
		}, engine)
		if err != nil {
			return nil, &ConfigError{Type: mc.Type, Key: mc.Key, Err: err}
		}
		c.register(m)
	}

	// AutoSetup resolution may register further modules while we walk, so
	// the loop re-reads the registration order until it is exhausted.
	for i := 0; i < len(c.order); i++ {
		if err := c.Prepare(ctx, c.order[i]); err != nil {
			return nil, err
		}
	}

	// Everything starts silent; cues decide what plays.
	for _, m := range c.order {
		if !m.desc.AlwaysOn {
			for _, u := range m.units {
				u.Stop(0)
			}
		}
	}

	c.warnUnroutedModules(ctx)
	return c, nil
}

func (c *Container) register(m *Module) {
	byKey, ok := c.modules[m.Type()]
	if !ok {
		byKey = make(map[string]*Module)
		c.modules[m.Type()] = byKey
	}
	if old, exists := byKey[m.key]; exists {
		for i, existing := range c.order {
			if existing == old {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	byKey[m.key] = m
	c.order = append(c.order, m)
}

// createModule instantiates and registers a module outside the configured
// list; AutoSetup bindings use it for lazily created defaults.
func (c *Container) createModule(ctx context.Context, moduleType, key string, params map[string]any) (*Module, error) {
	desc, ok := c.types[moduleType]
	if !ok {
		return nil, &ConfigError{Type: moduleType, Key: key, Err: &InvalidNameError{Name: moduleType + "." + key}}
	}
	m, err := newModule(ctx, desc, key, instanceConfig{autoStop: true, params: params}, c.engine)
	if err != nil {
		return nil, &ConfigError{Type: moduleType, Key: key, Err: err}
	}
	c.register(m)
	return m, nil
}

// Prepare performs two-phase setup for one module: first input assignment
// across the entire reachable subgraph, then signal-path construction in
// strict dependency order. A module's build step reads its already built
// inputs, so no path may be built before every input path exists.
func (c *Container) Prepare(ctx context.Context, m *Module) error {
	if err := c.assignInputsDeep(ctx, m, make(map[*Module]bool)); err != nil {
		return err
	}
	for _, in := range m.InputChain() {
		if err := in.BuildSignalPath(ctx); err != nil {
			return err
		}
	}
	return m.BuildSignalPath(ctx)
}

// assignInputsDeep resolves inputs depth-first. The visiting set is the
// recursion stack: revisiting a module that is still on it means the input
// edges loop back to it.
func (c *Container) assignInputsDeep(ctx context.Context, m *Module, visiting map[*Module]bool) error {
	if visiting[m] {
		return &CycleError{Name: m.Name()}
	}
	visiting[m] = true
	defer delete(visiting, m)

	if err := m.AssignInputs(ctx, c); err != nil {
		return err
	}
	for _, slot := range m.slots {
		in := m.resolved[slot.Name]
		if in == nil || in == c.emptyModule {
			continue
		}
		if err := c.assignInputsDeep(ctx, in, visiting); err != nil {
			return err
		}
	}
	return nil
}

// warnUnroutedModules reports every module with no transitive path to a
// physically routed module. Bad routing is a warning, not a failure: the
// show must still be able to start.
func (c *Container) warnUnroutedModules(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, m := range c.order {
		if m == c.emptyModule || m.SendToPhysicalOutput() {
			continue
		}
		routed := false
		for _, out := range m.OutputChain() {
			if out.SendToPhysicalOutput() {
				routed = true
				break
			}
		}
		if !routed {
			logger.Warn("Module has no connection to any physical output; this may be bad routing.",
				"module", m.Name(), "output_chain", moduleNames(m.OutputChain()))
		}
	}
}

func moduleNames(modules []*Module) []string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name()
	}
	return names
}

// ModuleByName resolves a dotted "type.replication_key" identifier, with
// an optional trailing output index ("type.key.1").
func (c *Container) ModuleByName(name string) (*Module, error) {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 2:
	case 3:
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return nil, &InvalidNameError{Name: name}
		}
	default:
		return nil, &InvalidNameError{Name: name}
	}
	byKey, ok := c.modules[parts[0]]
	if !ok {
		return nil, &InvalidNameError{Name: name}
	}
	m, ok := byKey[parts[1]]
	if !ok {
		return nil, &InvalidNameError{Name: name}
	}
	return m, nil
}

// Empty returns the reserved no-op module.
func (c *Container) Empty() *Module { return c.emptyModule }

// Modules returns every owned module in registration order.
func (c *Container) Modules() []*Module {
	return append([]*Module(nil), c.order...)
}

// Close stops every module immediately and asks the engine to drain. Only
// called at process shutdown.
func (c *Container) Close(ctx context.Context) error {
	for _, m := range c.order {
		m.Close()
	}
	return c.engine.Drain(ctx)
}
