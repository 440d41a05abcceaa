package hclconf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/cueflow/internal/config"
	"github.com/vk/cueflow/internal/ctxlog"
)

// Loader implements config.Loader for HCL files.
type Loader struct{}

// NewLoader returns a ready Loader.
func NewLoader() *Loader { return &Loader{} }

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"type", "key"}},
		{Type: "cue", LabelNames: []string{"name"}},
	},
}

var moduleSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "send_to_physical_output"},
		{Name: "auto_stop"},
		{Name: "fade_in"},
		{Name: "fade_out"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"slot"}},
		{Type: "defaults"},
		{Type: "params"},
	},
}

var inputSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "target", Required: true},
	},
}

var cueSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"type", "key"}},
		{Type: "stop", LabelNames: []string{"type", "key"}},
	},
}

// Load reads every .hcl file under the given paths (files or directories)
// and translates the blocks into the configuration model. Cue order
// follows file declaration order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := findHCLFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl configuration files found in %v", paths)
	}
	logger.Debug("Found HCL files to load.", "files", files)

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}
		if err := l.translateFile(hclFile.Body, model); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}
	logger.Info("Configuration loaded.", "modules", len(model.Modules), "cues", len(model.Cues))
	return model, nil
}

func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("configuration path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func (l *Loader) translateFile(body hcl.Body, model *config.Model) error {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return diags
	}
	for _, block := range content.Blocks {
		switch block.Type {
		case "module":
			mc, err := l.translateModule(block)
			if err != nil {
				return err
			}
			model.Modules = append(model.Modules, mc)
		case "cue":
			cc, err := l.translateCue(block)
			if err != nil {
				return err
			}
			model.Cues = append(model.Cues, cc)
		}
	}
	return nil
}

func (l *Loader) translateModule(block *hcl.Block) (*config.ModuleConfig, error) {
	mc := &config.ModuleConfig{
		Type:     block.Labels[0],
		Key:      block.Labels[1],
		AutoStop: true,
		Bindings: make(map[string]string),
	}
	content, diags := block.Body.Content(moduleSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("module '%s.%s': %w", mc.Type, mc.Key, diags)
	}

	for name, attr := range content.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("module '%s.%s', attribute '%s': %w", mc.Type, mc.Key, name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("module '%s.%s', attribute '%s': %w", mc.Type, mc.Key, name, err)
		}
		switch name {
		case "send_to_physical_output":
			mc.SendToPhysicalOutput, _ = native.(bool)
		case "auto_stop":
			mc.AutoStop, _ = native.(bool)
		case "fade_in":
			mc.FadeInDuration, _ = native.(float64)
		case "fade_out":
			mc.FadeOutDuration, _ = native.(float64)
		}
	}

	for _, inner := range content.Blocks {
		switch inner.Type {
		case "input":
			slot := inner.Labels[0]
			inputContent, diags := inner.Body.Content(inputSchema)
			if diags.HasErrors() {
				return nil, fmt.Errorf("module '%s.%s', input '%s': %w", mc.Type, mc.Key, slot, diags)
			}
			val, diags := inputContent.Attributes["target"].Expr.Value(nil)
			if diags.HasErrors() || val.Type().FriendlyName() != "string" {
				return nil, fmt.Errorf("module '%s.%s', input '%s': target must be a string identifier", mc.Type, mc.Key, slot)
			}
			mc.Bindings[slot] = val.AsString()
		case "defaults":
			params, err := l.attributesToMap(inner.Body)
			if err != nil {
				return nil, fmt.Errorf("module '%s.%s', defaults: %w", mc.Type, mc.Key, err)
			}
			mc.Defaults = params
		case "params":
			params, err := l.attributesToMap(inner.Body)
			if err != nil {
				return nil, fmt.Errorf("module '%s.%s', params: %w", mc.Type, mc.Key, err)
			}
			mc.Params = params
		}
	}
	return mc, nil
}

func (l *Loader) translateCue(block *hcl.Block) (*config.CueConfig, error) {
	cc := &config.CueConfig{Name: block.Labels[0]}
	content, diags := block.Body.Content(cueSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("cue '%s': %w", cc.Name, diags)
	}
	for _, inner := range content.Blocks {
		entry := &config.CueEntry{Type: inner.Labels[0], Key: inner.Labels[1]}
		switch inner.Type {
		case "module":
			params, err := l.attributesToMap(inner.Body)
			if err != nil {
				return nil, fmt.Errorf("cue '%s', module '%s.%s': %w", cc.Name, entry.Type, entry.Key, err)
			}
			entry.Params = params
		case "stop":
			// The force-stop marker is its own block type so no runtime
			// type inspection is needed downstream.
			entry.ForceStop = true
		}
		cc.Entries = append(cc.Entries, entry)
	}
	return cc, nil
}

func (l *Loader) attributesToMap(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute '%s': %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}
