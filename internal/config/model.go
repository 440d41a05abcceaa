package config

import "context"

// Model is the unified representation of the entire configuration: module
// instances keyed by type and replication key, plus the ordered cue list.
type Model struct {
	Modules []*ModuleConfig
	Cues    []*CueConfig
}

// ModuleConfig describes one module instance.
type ModuleConfig struct {
	// Type is the module type name; Key the replication key
	// distinguishing instances of the same type.
	Type string
	Key  string

	SendToPhysicalOutput bool
	AutoStop             bool
	FadeInDuration       float64
	FadeOutDuration      float64

	// Bindings overrides input slots with explicit "type.key" references.
	Bindings map[string]string

	// Defaults are the initialisation parameters applied whenever a cue
	// activates the module without its own parameters.
	Defaults map[string]any

	// Params are constructor parameters specific to the module type.
	Params map[string]any
}

// CueConfig describes one named cue: an ordered list of module entries.
type CueConfig struct {
	Name    string
	Entries []*CueEntry
}

// CueEntry addresses one module within a cue. Exactly one of Params and
// ForceStop is meaningful: either the module is (re)initialised with the
// given parameters, or it is stopped regardless of its auto-stop flag.
type CueEntry struct {
	Type      string
	Key       string
	Params    map[string]any
	ForceStop bool
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
