// Package config defines the format-agnostic configuration model: the
// declarative description of every module instance and every cue. Concrete
// file formats are translated into this model by a Loader implementation;
// the core never touches configuration syntax.
package config
