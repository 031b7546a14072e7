// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import (
	"fmt"
	"sort"
)

// Context is the semantic state that receives the lines nested under a node.
// Implementations must be pointer types: the dispatcher compares contexts to
// recognize items that return their own section as their body.
type Context interface {
	// Handlers returns the routing table for lines inside this context.
	Handlers() *Handlers
	// Finish is called once, after the last nested line has been closed.
	Finish() error
}

// ItemFunc interprets an unkeyworded line. It returns the context for the
// item's body, which may be the receiving context itself for flat items.
type ItemFunc func(key string, scope *Scope) (Context, error)

// SectionFunc opens a `:name` section and returns the context for its body.
type SectionFunc func(scope *Scope) (Context, error)

// MetaFunc interprets a `?name` directive. rec carries already expanded
// attributes. The returned node receives the directive's nested lines.
type MetaFunc func(parent *Node, rec *LineRecord) (*Node, error)

// Handlers is a routing table from keywords to handler functions. It is built
// once when its context is constructed and never changes afterwards.
type Handlers struct {
	item     ItemFunc
	sections map[string]SectionFunc
	metas    map[string]MetaFunc
}

// NewHandlers returns an empty table: no items, no sections, built-in metas only.
func NewHandlers() *Handlers {
	return &Handlers{
		sections: make(map[string]SectionFunc),
		metas:    make(map[string]MetaFunc),
	}
}

// HandleItems registers the item handler.
func (h *Handlers) HandleItems(fn ItemFunc) *Handlers {
	if h.item != nil {
		panic("item handler already registered")
	}
	h.item = fn
	return h
}

// HandleSection registers the handler for `:name` and `!name` lines.
func (h *Handlers) HandleSection(name string, fn SectionFunc) *Handlers {
	if _, exists := h.sections[name]; exists {
		panic(fmt.Sprintf("section handler with name '%s' already registered", name))
	}
	h.sections[name] = fn
	return h
}

// HandleMeta registers a dialect-specific `?name` directive. Built-in
// directives cannot be replaced.
func (h *Handlers) HandleMeta(name string, fn MetaFunc) *Handlers {
	if _, builtin := builtinMetas[name]; builtin {
		panic(fmt.Sprintf("meta handler '%s' is built in", name))
	}
	if _, exists := h.metas[name]; exists {
		panic(fmt.Sprintf("meta handler with name '%s' already registered", name))
	}
	h.metas[name] = fn
	return h
}

func (h *Handlers) section(name string) (SectionFunc, bool) {
	if h == nil {
		return nil, false
	}
	fn, ok := h.sections[name]
	return fn, ok
}

func (h *Handlers) meta(name string) (MetaFunc, bool) {
	if fn, ok := builtinMetas[name]; ok {
		return fn, true
	}
	if h == nil {
		return nil, false
	}
	fn, ok := h.metas[name]
	return fn, ok
}

// sectionNames lists the registered sections for diagnostics.
func (h *Handlers) sectionNames() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.sections))
	for n := range h.sections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// leaf is a context that accepts nothing.
type leaf struct{}

func (*leaf) Handlers() *Handlers { return nil }
func (*leaf) Finish() error       { return nil }

// Leaf returns a context that rejects any nested line. Dialects use it for
// items that have no body.
func Leaf() Context { return &leaf{} }
