// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"path"
	"strings"
)

// Component is one installed file with everything attached to it.
type Component struct {
	Source     string // path of the file on the build machine
	TargetName string // installed file name; defaults to the source base name
	DirRef     string // id of the directory the file is installed into
	CabRef     string // name of the cab the file ships in
	ExplicitID string
	Vital      bool
	Line       int

	Services  []*Service
	Shortcuts []*Shortcut
}

// BaseName returns the last element of a Windows or POSIX style path.
func BaseName(p string) string {
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}

// Name returns the installed file name.
func (c *Component) Name() string {
	if c.TargetName != "" {
		return c.TargetName
	}
	return BaseName(c.Source)
}

// LogicalKey identifies the component by where the file is installed and
// where it is built from: DIRREF\name|source. Two sources installed under
// the same name, such as per-platform builds of one library, keep distinct
// keys. '|' cannot appear in a target name, so the split is unambiguous.
func (c *Component) LogicalKey() string {
	return c.DirRef + `\` + c.Name() + "|" + c.Source
}

// Validate checks the component's own fields.
func (c *Component) Validate() error {
	switch {
	case strings.TrimSpace(c.Source) == "":
		return fmt.Errorf("file source path must not be empty")
	case c.DirRef == "":
		return fmt.Errorf("file %q: missing required attribute 'to'", c.Source)
	case c.CabRef == "":
		return fmt.Errorf("file %q: missing required attribute 'cab'", c.Source)
	}
	if n := c.Name(); n == "." || n == "/" || strings.ContainsAny(n, `\/:*?"<>|`) {
		return fmt.Errorf("file %q: invalid target name %q", c.Source, n)
	}
	return nil
}

// ServiceStart is when the service control manager starts a service.
type ServiceStart string

const (
	StartAuto     ServiceStart = "auto"
	StartDemand   ServiceStart = "demand"
	StartDisabled ServiceStart = "disabled"
)

// ErrorControl is how the service control manager reacts to start failures.
type ErrorControl string

const (
	ErrorIgnore   ErrorControl = "ignore"
	ErrorNormal   ErrorControl = "normal"
	ErrorCritical ErrorControl = "critical"
)

// Service installs the component's file as a Windows service.
type Service struct {
	Name         string
	DisplayName  string
	Description  string
	Start        ServiceStart
	ErrorControl ErrorControl
	Account      string
	Arguments    string
	Line         int
}

// Validate checks the service's own fields.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("service name must not be empty")
	}
	switch s.Start {
	case StartAuto, StartDemand, StartDisabled:
	default:
		return fmt.Errorf("service %q: invalid start %q: must be one of auto, demand, disabled", s.Name, s.Start)
	}
	switch s.ErrorControl {
	case ErrorIgnore, ErrorNormal, ErrorCritical:
	default:
		return fmt.Errorf("service %q: invalid errorControl %q: must be one of ignore, normal, critical", s.Name, s.ErrorControl)
	}
	return nil
}

// Shortcut points at the component's file.
type Shortcut struct {
	Name        string
	DirRef      string
	Arguments   string
	Description string
	WorkingDir  string
	Advertise   bool
	Line        int
}

// LogicalKey identifies the shortcut by the directory it is placed in and its name.
func (s *Shortcut) LogicalKey() string {
	return s.DirRef + `\` + s.Name
}

// Validate checks the shortcut's own fields.
func (s *Shortcut) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("shortcut name must not be empty")
	}
	if s.DirRef == "" {
		return fmt.Errorf("shortcut %q: missing required attribute 'dir'", s.Name)
	}
	return nil
}
