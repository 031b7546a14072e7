// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package emit

import (
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/model"
)

// indexDirectories maps every directory id to its directory and rejects two
// directories that end up with the same id.
func indexDirectories(doc *model.Document) (map[string]*model.Directory, error) {
	dirs := make(map[string]*model.Directory)
	err := doc.WalkDirectories(func(d *model.Directory) error {
		id := d.ID()
		if prev, ok := dirs[id]; ok {
			return diag.Errorf(diag.Emission, d.Line,
				"directories '%s' and '%s' both have id %q", prev.LogicalPath(), d.LogicalPath(), id)
		}
		dirs[id] = d
		return nil
	})
	return dirs, err
}

// checkReferences makes sure every component names a declared cab and every
// directory reference resolves.
func checkReferences(doc *model.Document, dirs map[string]*model.Directory) error {
	for _, c := range doc.Components {
		if _, ok := doc.Cab(c.CabRef); !ok {
			return diag.Errorf(diag.Emission, c.Line, "file %q references undeclared cab %q", c.Source, c.CabRef)
		}
		if _, ok := dirs[c.DirRef]; !ok {
			return diag.Errorf(diag.Emission, c.Line, "file %q references undeclared directory %q", c.Source, c.DirRef)
		}
		for _, s := range c.Shortcuts {
			if _, ok := dirs[s.DirRef]; !ok {
				return diag.Errorf(diag.Emission, s.Line, "shortcut %q references undeclared directory %q", s.Name, s.DirRef)
			}
			if s.WorkingDir != "" {
				if _, ok := dirs[s.WorkingDir]; !ok {
					return diag.Errorf(diag.Emission, s.Line, "shortcut %q references undeclared working directory %q", s.Name, s.WorkingDir)
				}
			}
		}
	}
	return nil
}

// idRegistry records final element ids and remembers the first clash.
type idRegistry struct {
	owners map[string]owner
	clash  error
}

type owner struct {
	what string
	line int
}

func newIDRegistry() *idRegistry {
	return &idRegistry{owners: make(map[string]owner)}
}

func (r *idRegistry) add(id, what string, line int) {
	if r.clash != nil {
		return
	}
	if prev, ok := r.owners[id]; ok {
		r.clash = diag.Errorf(diag.Emission, line,
			"id %q of %s is already used by %s on line %d", id, what, prev.what, prev.line)
		return
	}
	r.owners[id] = owner{what: what, line: line}
}

func (r *idRegistry) err() error { return r.clash }
