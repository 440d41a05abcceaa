// Package module implements the dependency graph at the center of cueflow:
// named module instances with input slots, binding strategies that resolve
// slots to concrete upstream modules, and the container that owns every
// instance and performs dependency-ordered two-phase setup.
//
// A module is identified by its type name plus a replication key
// ("sine.modern"). Input slots resolve either by registry lookup (Catch) or
// by lazily creating a deterministically keyed default instance (AutoSetup).
// After the container has prepared the graph, each module exposes memoized
// traversal chains that the cue layer uses to compute activation sets.
package module
