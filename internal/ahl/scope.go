// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import "os"

// Root holds what every scope chain inherits from the caller.
type Root struct {
	// Variables answers $(swix.var.NAME).
	Variables map[string]string
	// LookupEnv answers $(swix.env.NAME). Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

type entry struct {
	value string
	used  bool
}

// Scope is one frame of the attribute chain. Lookups fall through to the
// parent frame when a name is not defined locally.
type Scope struct {
	parent *Scope
	root   *Root
	line   int
	names  []string
	attrs  map[string]*entry
}

// NewRootScope creates the outermost frame. It holds no attributes.
func NewRootScope(root Root) *Scope {
	if root.LookupEnv == nil {
		root.LookupEnv = os.LookupEnv
	}
	if root.Variables == nil {
		root.Variables = map[string]string{}
	}
	return &Scope{root: &root, attrs: map[string]*entry{}}
}

// Child pushes a new frame holding attrs on top of s.
func (s *Scope) Child(line int, attrs []Attribute) *Scope {
	c := &Scope{
		parent: s,
		root:   s.root,
		line:   line,
		attrs:  make(map[string]*entry, len(attrs)),
	}
	for _, a := range attrs {
		c.Set(a.Name, a.Value)
	}
	return c
}

// Lookup returns the value of the closest frame defining name and marks that
// definition as used.
func (s *Scope) Lookup(name string) (string, bool) {
	for f := s; f != nil; f = f.parent {
		if e, ok := f.attrs[name]; ok {
			e.used = true
			return e.value, true
		}
	}
	return "", false
}

// LookupLocal is Lookup restricted to this frame. Dialects use it for
// attributes that name a single node and must not be inherited.
func (s *Scope) LookupLocal(name string) (string, bool) {
	e, ok := s.attrs[name]
	if !ok {
		return "", false
	}
	e.used = true
	return e.value, true
}

// Get is Lookup with a fallback value.
func (s *Scope) Get(name, fallback string) string {
	if v, ok := s.Lookup(name); ok {
		return v
	}
	return fallback
}

// Set defines or replaces name on this frame.
func (s *Scope) Set(name, value string) {
	if e, ok := s.attrs[name]; ok {
		e.value = value
		e.used = false
		return
	}
	s.names = append(s.names, name)
	s.attrs[name] = &entry{value: value}
}

// Own returns the attributes defined on this frame, in definition order.
func (s *Scope) Own() []Attribute {
	out := make([]Attribute, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, Attribute{Name: n, Value: s.attrs[n].value})
	}
	return out
}

// Unused returns the names defined on this frame that no lookup has hit.
func (s *Scope) Unused() []string {
	var out []string
	for _, n := range s.names {
		if !s.attrs[n].used {
			out = append(out, n)
		}
	}
	return out
}

// markUsed flags every local attribute as consumed.
func (s *Scope) markUsed() {
	for _, e := range s.attrs {
		e.used = true
	}
}

// Parent returns the enclosing frame, nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Line returns the source line that created the frame, 0 for the root.
func (s *Scope) Line() int { return s.line }

// Root returns the caller-supplied inheritance root.
func (s *Scope) Root() *Root { return s.root }
