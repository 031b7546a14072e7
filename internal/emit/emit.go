// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package emit

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/identity"
	"github.com/vk/swix/internal/model"
)

// Namespace is the WiX v3 schema namespace.
const Namespace = "http://schemas.microsoft.com/wix/2006/wi"

// RootDirectory names the top-level directory Windows Installer reserves for
// the root of the target tree. It is emitted with Name SourceDir.
const RootDirectory = "TARGETDIR"

// Emit renders doc as a WiX fragment. Identifiers are requested from ids
// before any markup is produced, so identity failures leave nothing behind.
func Emit(doc *model.Document, ids Identifiers) ([]byte, error) {
	p, err := newPlan(doc, ids)
	if err != nil {
		return nil, err
	}

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	wix := out.CreateElement("Wix")
	wix.CreateAttr("xmlns", Namespace)
	if doc.SourcePath != "" {
		wix.CreateComment(fmt.Sprintf(" Generated from %s. Do not edit. ", filepath.Base(doc.SourcePath)))
	}
	fragment := wix.CreateElement("Fragment")

	for _, d := range doc.Directories {
		writeDirectory(fragment, d)
	}
	for _, m := range p.media {
		writeMedia(fragment, m)
	}
	for _, g := range p.groups {
		ref := fragment.CreateElement("DirectoryRef")
		ref.CreateAttr("Id", g.dirRef)
		for _, cp := range g.components {
			writeComponent(ref, cp)
		}
	}

	out.Indent(2)
	b, err := out.WriteToBytes()
	if err != nil {
		return nil, &diag.Error{Kind: diag.Emission, Message: fmt.Sprintf("serializing markup: %v", err)}
	}
	return b, nil
}

func writeDirectory(parent *etree.Element, d *model.Directory) {
	el := parent.CreateElement("Directory")
	el.CreateAttr("Id", d.ID())
	name := d.TargetName
	if d.Parent == nil && d.Name == RootDirectory {
		name = "SourceDir"
	}
	el.CreateAttr("Name", name)
	for _, c := range d.Children {
		writeDirectory(el, c)
	}
}

func writeMedia(parent *etree.Element, m media) {
	el := parent.CreateElement("Media")
	el.CreateAttr("Id", strconv.Itoa(m.diskID))
	el.CreateAttr("Cabinet", m.cab.VolumeName(m.volume))
	el.CreateAttr("CompressionLevel", string(m.cab.Compression))
	el.CreateAttr("EmbedCab", yesNo(m.cab.Embed))
}

func writeComponent(parent *etree.Element, cp *componentPlan) {
	c := cp.comp
	el := parent.CreateElement("Component")
	el.CreateAttr("Id", cp.id)
	el.CreateAttr("Guid", identity.Format(cp.guid))

	file := el.CreateElement("File")
	file.CreateAttr("Id", cp.id)
	file.CreateAttr("Name", c.Name())
	file.CreateAttr("Source", c.Source)
	file.CreateAttr("DiskId", strconv.Itoa(cp.diskID))
	file.CreateAttr("KeyPath", "yes")
	if c.Vital {
		file.CreateAttr("Vital", "yes")
	}

	for i, s := range c.Shortcuts {
		sc := file.CreateElement("Shortcut")
		sc.CreateAttr("Id", cp.shortcuts[i])
		sc.CreateAttr("Name", s.Name)
		sc.CreateAttr("Directory", s.DirRef)
		optionalAttr(sc, "Arguments", s.Arguments)
		optionalAttr(sc, "Description", s.Description)
		optionalAttr(sc, "WorkingDirectory", s.WorkingDir)
		sc.CreateAttr("Advertise", yesNo(s.Advertise))
	}

	for i, s := range c.Services {
		id := cp.services[i]
		svc := el.CreateElement("ServiceInstall")
		svc.CreateAttr("Id", id)
		svc.CreateAttr("Name", s.Name)
		optionalAttr(svc, "DisplayName", s.DisplayName)
		optionalAttr(svc, "Description", s.Description)
		svc.CreateAttr("Type", "ownProcess")
		svc.CreateAttr("Start", string(s.Start))
		svc.CreateAttr("ErrorControl", string(s.ErrorControl))
		optionalAttr(svc, "Account", s.Account)
		optionalAttr(svc, "Arguments", s.Arguments)

		ctl := el.CreateElement("ServiceControl")
		ctl.CreateAttr("Id", id)
		ctl.CreateAttr("Name", s.Name)
		if s.Start == model.StartAuto {
			ctl.CreateAttr("Start", "install")
		}
		ctl.CreateAttr("Stop", "both")
		ctl.CreateAttr("Remove", "uninstall")
		ctl.CreateAttr("Wait", "yes")
	}
}

func optionalAttr(el *etree.Element, key, value string) {
	if value != "" {
		el.CreateAttr(key, value)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
