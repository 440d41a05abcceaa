package module

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/cueflow/internal/ctxlog"
)

// Input is a binding strategy describing how an input slot resolves to a
// concrete upstream module.
//
// The implicit flag marks whether the edge counts toward implicit
// transitive activation: an implicit input is activated whenever anything
// in its output chain is activated during a cue, while a non-implicit
// input only plays when a cue names it explicitly.
type Input interface {
	Implicit() bool
	resolve(ctx context.Context, c *Container, parent *Module, slot string) (*Module, error)
}

// NewCatch returns a binding that resolves by registry lookup of a dotted
// "type.replication_key" identifier. On a miss it warns and substitutes the
// shared no-op module so the graph stays buildable.
func NewCatch(target string, implicit bool) Input {
	return catch{target: target, implicit: implicit}
}

type catch struct {
	target   string
	implicit bool
}

func (i catch) Implicit() bool { return i.implicit }

func (i catch) resolve(ctx context.Context, c *Container, parent *Module, slot string) (*Module, error) {
	if parent != nil && i.target == parent.Name() {
		return nil, &CycleError{Name: i.target}
	}
	m, err := c.ModuleByName(i.target)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Could not resolve module input, substituting the no-op module.",
			"target", i.target, "parent", parent.Name(), "slot", slot)
		return c.emptyModule, nil
	}
	return m, nil
}

// NewAutoSetup returns a binding that lazily creates a default instance of
// the given module type the first time the slot resolves. The replication
// key is derived deterministically from the parent's identity and the slot
// name, so repeated resolution reuses the existing instance and the
// instance stays addressable from configuration.
func NewAutoSetup(moduleType string, params map[string]any, implicit bool) Input {
	return autoSetup{moduleType: moduleType, params: params, implicit: implicit}
}

type autoSetup struct {
	moduleType string
	params     map[string]any
	implicit   bool
}

func (i autoSetup) Implicit() bool { return i.implicit }

// childKey derives the replication key of an auto-created instance. The
// dotted parent name is flattened so the result is itself a plain key:
// sine.modern + "frequency" -> "sine_modern_child_frequency".
func (i autoSetup) childKey(parent *Module, slot string) string {
	if parent == nil {
		return ""
	}
	return strings.ReplaceAll(parent.Name(), ".", "_") + "_child_" + slot
}

func (i autoSetup) resolve(ctx context.Context, c *Container, parent *Module, slot string) (*Module, error) {
	key := i.childKey(parent, slot)
	name := i.moduleType + "." + key
	if parent != nil && name == parent.Name() {
		return nil, &CycleError{Name: name}
	}
	if existing, err := c.ModuleByName(name); err == nil {
		return existing, nil
	}
	m, err := c.createModule(ctx, i.moduleType, key, i.params)
	if err != nil {
		return nil, fmt.Errorf("auto setup for slot '%s' of '%s': %w", slot, parent.Name(), err)
	}
	return m, nil
}
