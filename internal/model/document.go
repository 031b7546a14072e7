// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"strings"
)

// Document is the result of compiling one source file.
type Document struct {
	SourcePath  string
	Directories []*Directory // top-level directories, in source order
	Cabs        []*Cab
	Components  []*Component
}

// NewDocument creates an empty document for the given source.
func NewDocument(sourcePath string) *Document {
	return &Document{SourcePath: sourcePath}
}

// AddDirectory attaches d under parent, or at the top level when parent is nil.
func (doc *Document) AddDirectory(parent, d *Directory) {
	d.Parent = parent
	if parent == nil {
		doc.Directories = append(doc.Directories, d)
		return
	}
	parent.Children = append(parent.Children, d)
}

// WalkDirectories visits every directory depth first, parents before children.
func (doc *Document) WalkDirectories(fn func(d *Directory) error) error {
	var walk func([]*Directory) error
	walk = func(dirs []*Directory) error {
		for _, d := range dirs {
			if err := fn(d); err != nil {
				return err
			}
			if err := walk(d.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(doc.Directories)
}

// Cab returns the cab declared with name.
func (doc *Document) Cab(name string) (*Cab, bool) {
	for _, c := range doc.Cabs {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Directory is one node of the target directory tree.
type Directory struct {
	Name       string // name as written in the source
	TargetName string // on-disk name; defaults to Name
	ExplicitID string
	Line       int

	Parent   *Directory
	Children []*Directory
}

// LogicalPath joins the names from the root down to d with backslashes.
func (d *Directory) LogicalPath() string {
	var parts []string
	for n := d; n != nil; n = n.Parent {
		parts = append(parts, n.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, `\`)
}

// ID returns the explicit id, or one derived from the name.
func (d *Directory) ID() string {
	if d.ExplicitID != "" {
		return d.ExplicitID
	}
	return SanitizeID(d.Name)
}

// Validate checks the directory's own fields.
func (d *Directory) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("directory name must not be empty")
	}
	if strings.ContainsAny(d.TargetName, `\/:*?"<>|`) {
		return fmt.Errorf("directory name %q contains characters not allowed in a path segment", d.TargetName)
	}
	return nil
}

// SanitizeID maps s onto the identifier alphabet: letters, digits, '_' and
// '.'. Anything else becomes '_' and a leading digit gets a '_' prefix.
func SanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" || (id[0] >= '0' && id[0] <= '9') || id[0] == '.' {
		id = "_" + id
	}
	return id
}
