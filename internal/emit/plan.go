// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package emit

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/identity"
	"github.com/vk/swix/internal/model"
)

// Identity kinds requested from the store.
const (
	KindComponent = "component"
	KindService   = "service"
	KindShortcut  = "shortcut"
)

// maxReadable bounds the readable part of a derived id so that the id with
// its 32 digit suffix stays within the 72 character identifier limit.
const maxReadable = 39

// Identifiers issues stable identifiers. *identity.Store implements it.
type Identifiers interface {
	Get(kind, logicalPath string) (uuid.UUID, error)
}

var _ Identifiers = (*identity.Store)(nil)

// plan is a validated document with every identifier resolved. Building
// the markup from a plan cannot fail.
type plan struct {
	doc        *model.Document
	media      []media
	firstDisk  map[string]int // cab name -> disk id of its first volume
	groups     []*group
	components map[*model.Component]*componentPlan
}

type media struct {
	diskID int
	cab    *model.Cab
	volume int
}

// group is one DirectoryRef and the components installed into it.
type group struct {
	dirRef     string
	components []*componentPlan
}

type componentPlan struct {
	comp      *model.Component
	id        string
	guid      uuid.UUID
	diskID    int
	services  []string
	shortcuts []string
}

// newPlan checks cross references and resolves identifiers. It performs
// every check that can fail before any markup exists.
func newPlan(doc *model.Document, ids Identifiers) (*plan, error) {
	dirs, err := indexDirectories(doc)
	if err != nil {
		return nil, err
	}
	if err := checkReferences(doc, dirs); err != nil {
		return nil, err
	}

	p := &plan{
		doc:        doc,
		firstDisk:  make(map[string]int),
		components: make(map[*model.Component]*componentPlan),
	}
	diskID := 1
	for _, cab := range doc.Cabs {
		p.firstDisk[cab.Name] = diskID
		for v := 0; v < cab.Split; v++ {
			p.media = append(p.media, media{diskID: diskID, cab: cab, volume: v})
			diskID++
		}
	}

	seen := newIDRegistry()
	_ = doc.WalkDirectories(func(d *model.Directory) error {
		seen.add(d.ID(), "directory "+d.LogicalPath(), d.Line)
		return nil
	})

	byDir := make(map[string]*group)
	for _, c := range doc.Components {
		cp, err := p.resolve(c, ids)
		if err != nil {
			return nil, err
		}
		seen.add(cp.id, fmt.Sprintf("file %q", c.Source), c.Line)
		for i, s := range c.Services {
			seen.add(cp.services[i], fmt.Sprintf("service %q", s.Name), s.Line)
		}
		for i, s := range c.Shortcuts {
			seen.add(cp.shortcuts[i], fmt.Sprintf("shortcut %q", s.Name), s.Line)
		}

		g, ok := byDir[c.DirRef]
		if !ok {
			g = &group{dirRef: c.DirRef}
			byDir[c.DirRef] = g
			p.groups = append(p.groups, g)
		}
		g.components = append(g.components, cp)
		p.components[c] = cp
	}
	if err := seen.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// resolve requests the component's identifiers and places it on a volume.
func (p *plan) resolve(c *model.Component, ids Identifiers) (*componentPlan, error) {
	guid, err := ids.Get(KindComponent, c.LogicalKey())
	if err != nil {
		return nil, lineOf(err, c.Line)
	}
	cp := &componentPlan{comp: c, guid: guid, id: c.ExplicitID}
	if cp.id == "" {
		cp.id = derivedID(c.Name(), guid)
	}

	cab, _ := p.doc.Cab(c.CabRef)
	cp.diskID = p.firstDisk[cab.Name] + volume(guid, cab.Split)

	for _, s := range c.Services {
		id, err := ids.Get(KindService, c.LogicalKey()+`\`+s.Name)
		if err != nil {
			return nil, lineOf(err, s.Line)
		}
		cp.services = append(cp.services, derivedID(s.Name, id))
	}
	for _, s := range c.Shortcuts {
		id, err := ids.Get(KindShortcut, s.LogicalKey())
		if err != nil {
			return nil, lineOf(err, s.Line)
		}
		cp.shortcuts = append(cp.shortcuts, derivedID(s.Name, id))
	}
	return cp, nil
}

// derivedID combines a readable base with the compact stable identifier.
func derivedID(name string, id uuid.UUID) string {
	base := model.SanitizeID(name)
	if len(base) > maxReadable {
		base = base[:maxReadable]
	}
	return base + "_" + identity.Compact(id)
}

// volume picks the cab volume for a stable identifier, so a component stays
// on the same volume from one build to the next.
func volume(id uuid.UUID, split int) int {
	if split <= 1 {
		return 0
	}
	return int(binary.BigEndian.Uint64(id[8:]) % uint64(split))
}

func lineOf(err error, line int) error {
	if de, ok := diag.As(err); ok && de.Line == 0 {
		de.Line = line
	}
	return err
}
