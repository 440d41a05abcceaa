package module

import "fmt"

// CycleError is raised when a module is, directly or transitively, its own
// input. It is detected before any signal path is built.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("module '%s' has itself as an input: a module can not be part of its own input chain", e.Name)
}

// ConfigError wraps a constructor failure with the offending type name and
// replication key so the user can find the broken block.
type ConfigError struct {
	Type string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for module '%s.%s': %v", e.Type, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvalidNameError is raised for a malformed dotted module identifier.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid module instance name '%s': expected 'type.replication_key' or 'type.replication_key.output_index'", e.Name)
}
