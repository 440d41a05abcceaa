// Package hclconf implements config.Loader for HCL files. It parses
// module and cue blocks and translates them into the format-agnostic
// configuration model, converting every attribute value into its native
// Go representation on the way.
package hclconf
