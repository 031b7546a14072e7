package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/swix/internal/config"
	"github.com/vk/swix/internal/ctxlog"
	"github.com/vk/swix/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
// A variable file holds top-level attributes only:
//
//	ProductName = "Example"
//	Version     = "1.4.0"
//	Split       = 2
type Loader struct{}

// NewLoader creates a new HCL variable file loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every variable file found at paths. Files are applied in the
// order given, directories in lexical order, and a later definition of a
// name replaces an earlier one.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()
	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		attrs, diags := hclFile.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			val, diags := attrs[name].Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate variable '%s' in %s: %w", name, file, diags)
			}
			s, err := toVariable(name, val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Set(name, s, file)
		}
		logger.Debug("Loaded variable file.", "file", file, "variables", len(names))
	}

	logger.Debug("HCL loading complete.", "variables", len(model.Variables))
	return model, nil
}

// findAllHCLFiles expands directories into the .hcl files they contain and
// drops repeated paths.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing variable file %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
