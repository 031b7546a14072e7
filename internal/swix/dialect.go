// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package swix

import (
	"fmt"
	"strings"

	"github.com/vk/swix/internal/ahl"
	"github.com/vk/swix/internal/model"
)

// rootContext accepts the top-level sections of a source file.
type rootContext struct {
	doc      *model.Document
	handlers *ahl.Handlers
}

func newRootContext(doc *model.Document) *rootContext {
	c := &rootContext{doc: doc}
	c.handlers = ahl.NewHandlers().
		HandleSection("directories", c.directories).
		HandleSection("cabFiles", c.cabFiles).
		HandleSection("files", c.files)
	return c
}

func (c *rootContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *rootContext) Finish() error           { return nil }

func (c *rootContext) directories(*ahl.Scope) (ahl.Context, error) {
	return newDirectoriesContext(c.doc, nil), nil
}

func (c *rootContext) cabFiles(*ahl.Scope) (ahl.Context, error) {
	return newCabsContext(c.doc), nil
}

func (c *rootContext) files(*ahl.Scope) (ahl.Context, error) {
	return newFilesContext(c.doc), nil
}

// directoriesContext receives directory items. Each item's body holds its
// subdirectories.
type directoriesContext struct {
	doc      *model.Document
	parent   *model.Directory
	handlers *ahl.Handlers
}

func newDirectoriesContext(doc *model.Document, parent *model.Directory) *directoriesContext {
	c := &directoriesContext{doc: doc, parent: parent}
	c.handlers = ahl.NewHandlers().HandleItems(c.directory)
	return c
}

func (c *directoriesContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *directoriesContext) Finish() error           { return nil }

func (c *directoriesContext) directory(key string, scope *ahl.Scope) (ahl.Context, error) {
	a := attrs{scope}
	d := &model.Directory{
		Name:       key,
		TargetName: a.local("name"),
		ExplicitID: a.local("id"),
		Line:       scope.Line(),
	}
	if d.TargetName == "" {
		d.TargetName = d.Name
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	siblings := c.doc.Directories
	if c.parent != nil {
		siblings = c.parent.Children
	}
	for _, s := range siblings {
		if strings.EqualFold(s.Name, d.Name) {
			return nil, fmt.Errorf("directory %q already declared on line %d", d.Name, s.Line)
		}
	}
	c.doc.AddDirectory(c.parent, d)
	return newDirectoriesContext(c.doc, d), nil
}

// cabsContext receives cabinet declarations.
type cabsContext struct {
	doc      *model.Document
	handlers *ahl.Handlers
}

func newCabsContext(doc *model.Document) *cabsContext {
	c := &cabsContext{doc: doc}
	c.handlers = ahl.NewHandlers().HandleItems(c.cab)
	return c
}

func (c *cabsContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *cabsContext) Finish() error           { return nil }

func (c *cabsContext) cab(key string, scope *ahl.Scope) (ahl.Context, error) {
	a := attrs{scope}
	compression, err := model.ParseCompression(a.text("compression", string(model.CompressionMSZip)))
	if err != nil {
		return nil, fmt.Errorf("cab %q: %w", key, err)
	}
	split, err := a.integer("split", 1)
	if err != nil {
		return nil, err
	}
	embed, err := a.boolean("embed", true)
	if err != nil {
		return nil, err
	}

	cab := &model.Cab{
		Name:        key,
		Compression: compression,
		Split:       split,
		Embed:       embed,
		Line:        scope.Line(),
	}
	if err := cab.Validate(); err != nil {
		return nil, err
	}
	if prev, dup := c.doc.Cab(key); dup {
		return nil, fmt.Errorf("cab %q already declared on line %d", key, prev.Line)
	}
	c.doc.Cabs = append(c.doc.Cabs, cab)
	return ahl.Leaf(), nil
}

// filesContext receives file items, one component each.
type filesContext struct {
	doc      *model.Document
	handlers *ahl.Handlers
}

func newFilesContext(doc *model.Document) *filesContext {
	c := &filesContext{doc: doc}
	c.handlers = ahl.NewHandlers().HandleItems(c.file)
	return c
}

func (c *filesContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *filesContext) Finish() error           { return nil }

func (c *filesContext) file(key string, scope *ahl.Scope) (ahl.Context, error) {
	a := attrs{scope}
	vital, err := a.boolean("vital", false)
	if err != nil {
		return nil, err
	}
	comp := &model.Component{
		Source:     key,
		TargetName: a.local("name"),
		DirRef:     a.text("to", ""),
		CabRef:     a.text("cab", ""),
		ExplicitID: a.local("id"),
		Vital:      vital,
		Line:       scope.Line(),
	}
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	c.doc.Components = append(c.doc.Components, comp)
	return newFileContext(comp), nil
}

// fileContext is the body of one file item.
type fileContext struct {
	comp     *model.Component
	handlers *ahl.Handlers
}

func newFileContext(comp *model.Component) *fileContext {
	c := &fileContext{comp: comp}
	c.handlers = ahl.NewHandlers().
		HandleSection("services", c.services).
		HandleSection("shortcuts", c.shortcuts)
	return c
}

func (c *fileContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *fileContext) Finish() error           { return nil }

func (c *fileContext) services(*ahl.Scope) (ahl.Context, error) {
	return newServicesContext(c.comp), nil
}

func (c *fileContext) shortcuts(*ahl.Scope) (ahl.Context, error) {
	return newShortcutsContext(c.comp), nil
}

// servicesContext receives the services installed from one file.
type servicesContext struct {
	comp     *model.Component
	handlers *ahl.Handlers
}

func newServicesContext(comp *model.Component) *servicesContext {
	c := &servicesContext{comp: comp}
	c.handlers = ahl.NewHandlers().HandleItems(c.service)
	return c
}

func (c *servicesContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *servicesContext) Finish() error           { return nil }

func (c *servicesContext) service(key string, scope *ahl.Scope) (ahl.Context, error) {
	a := attrs{scope}
	svc := &model.Service{
		Name:         key,
		DisplayName:  a.local("displayName"),
		Description:  a.local("description"),
		Start:        model.ServiceStart(strings.ToLower(a.text("start", string(model.StartDemand)))),
		ErrorControl: model.ErrorControl(strings.ToLower(a.text("errorControl", string(model.ErrorNormal)))),
		Account:      a.text("account", ""),
		Arguments:    a.local("arguments"),
		Line:         scope.Line(),
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	for _, s := range c.comp.Services {
		if strings.EqualFold(s.Name, svc.Name) {
			return nil, fmt.Errorf("service %q already declared on line %d", svc.Name, s.Line)
		}
	}
	c.comp.Services = append(c.comp.Services, svc)
	return ahl.Leaf(), nil
}

// shortcutsContext receives the shortcuts pointing at one file.
type shortcutsContext struct {
	comp     *model.Component
	handlers *ahl.Handlers
}

func newShortcutsContext(comp *model.Component) *shortcutsContext {
	c := &shortcutsContext{comp: comp}
	c.handlers = ahl.NewHandlers().HandleItems(c.shortcut)
	return c
}

func (c *shortcutsContext) Handlers() *ahl.Handlers { return c.handlers }
func (c *shortcutsContext) Finish() error           { return nil }

func (c *shortcutsContext) shortcut(key string, scope *ahl.Scope) (ahl.Context, error) {
	a := attrs{scope}
	advertise, err := a.boolean("advertise", true)
	if err != nil {
		return nil, err
	}
	sc := &model.Shortcut{
		Name:        key,
		DirRef:      a.text("dir", ""),
		Arguments:   a.local("arguments"),
		Description: a.local("description"),
		WorkingDir:  a.text("workingDir", ""),
		Advertise:   advertise,
		Line:        scope.Line(),
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	c.comp.Shortcuts = append(c.comp.Shortcuts, sc)
	return ahl.Leaf(), nil
}
