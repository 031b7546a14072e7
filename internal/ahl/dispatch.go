// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/swix/internal/ctxlog"
	"github.com/vk/swix/internal/diag"
)

// Node is an open structural node: the context and scope its nested lines
// are interpreted against, plus what to do when it closes.
type Node struct {
	ctx    Context
	scope  *Scope
	finish func() error
}

// NewNode assembles a node. finish may be nil.
func NewNode(ctx Context, scope *Scope, finish func() error) *Node {
	return &Node{ctx: ctx, scope: scope, finish: finish}
}

// Context returns the context receiving the node's nested lines.
func (n *Node) Context() Context { return n.ctx }

// Scope returns the scope nested lines inherit from.
func (n *Node) Scope() *Scope { return n.scope }

// UnusedFunc receives the attributes of a closed node that nothing read.
type UnusedFunc func(line int, names []string)

// Dispatcher routes structural events to the handler tables of the active
// contexts. It implements Builder[*Node].
type Dispatcher struct {
	logger   *slog.Logger
	onUnused UnusedFunc
}

// NewDispatcher creates a dispatcher logging through the context's logger.
// onUnused may be nil.
func NewDispatcher(ctx context.Context, onUnused UnusedFunc) *Dispatcher {
	return &Dispatcher{logger: ctxlog.FromContext(ctx), onUnused: onUnused}
}

// Run interprets records against root, starting from rootScope.
func (d *Dispatcher) Run(records []LineRecord, root Context, rootScope *Scope) error {
	return Parse[*Node](records, NewNode(root, rootScope, root.Finish), d)
}

// Open implements Builder.
func (d *Dispatcher) Open(parent *Node, rec *LineRecord) (*Node, error) {
	root := parent.scope.Root()
	attrs, err := root.expandAttributes(rec.Line, rec.Attributes)
	if err != nil {
		return nil, err
	}
	key := rec.Key
	if rec.HasKey {
		if key, err = root.Expand(rec.Line, key); err != nil {
			return nil, err
		}
	}
	d.logger.Debug("Dispatching line.", "line", rec.Line, "class", rec.Class.String(), "keyword", rec.Keyword, "key", key)

	var n *Node
	switch rec.Class {
	case Item:
		n, err = d.openItem(parent.ctx, parent.scope, rec.Line, rec.HasKey, key, attrs)
	case Section:
		n, err = d.openSection(parent, rec, attrs)
	case InlineSection:
		n, err = d.openInline(parent, rec, key, attrs)
	case Meta:
		n, err = d.openMeta(parent, rec, key, attrs)
	default:
		err = diag.Errorf(diag.Internal, rec.Line, "unknown line class %d", rec.Class)
	}
	if err != nil {
		return nil, lineError(rec.Line, err)
	}
	return n, nil
}

// Close implements Builder.
func (d *Dispatcher) Close(n *Node) error {
	if n.finish == nil {
		return nil
	}
	return lineError(n.scope.Line(), n.finish())
}

func (d *Dispatcher) openItem(owner Context, parent *Scope, line int, hasKey bool, key string, attrs []Attribute) (*Node, error) {
	h := owner.Handlers()
	if h == nil || h.item == nil {
		return nil, diag.Errorf(diag.Semantic, line, "items not allowed here")
	}
	if !hasKey {
		return nil, diag.Errorf(diag.Semantic, line, "item has no key")
	}
	scope := parent.Child(line, attrs)
	body, err := h.item(key, scope)
	if err != nil {
		return nil, err
	}
	finish := d.reportUnused(scope, nil)
	if body != owner {
		finish = d.reportUnused(scope, body.Finish)
	}
	return NewNode(body, scope, finish), nil
}

func (d *Dispatcher) openSection(parent *Node, rec *LineRecord, attrs []Attribute) (*Node, error) {
	if rec.HasKey {
		return nil, diag.Errorf(diag.Semantic, rec.Line, "section %q does not take a key", rec.Keyword)
	}
	fn, err := d.lookupSection(parent.ctx, rec)
	if err != nil {
		return nil, err
	}
	scope := parent.scope.Child(rec.Line, attrs)
	body, err := fn(scope)
	if err != nil {
		return nil, err
	}
	return NewNode(body, scope, d.reportUnused(scope, body.Finish)), nil
}

// openInline opens the section against the current scope, then feeds it the
// line itself as its single item. Closing the item closes the section.
func (d *Dispatcher) openInline(parent *Node, rec *LineRecord, key string, attrs []Attribute) (*Node, error) {
	fn, err := d.lookupSection(parent.ctx, rec)
	if err != nil {
		return nil, err
	}
	section, err := fn(parent.scope)
	if err != nil {
		return nil, err
	}
	item, err := d.openItem(section, parent.scope, rec.Line, rec.HasKey, key, attrs)
	if err != nil {
		return nil, err
	}
	item.finish = chain(item.finish, section.Finish)
	return item, nil
}

func (d *Dispatcher) openMeta(parent *Node, rec *LineRecord, key string, attrs []Attribute) (*Node, error) {
	fn, ok := parent.ctx.Handlers().meta(rec.Keyword)
	if !ok {
		return nil, diag.Errorf(diag.Semantic, rec.Line, "unknown directive '?%s'", rec.Keyword)
	}
	expanded := *rec
	expanded.Key = key
	expanded.Attributes = attrs
	n, err := fn(parent, &expanded)
	if err != nil {
		return nil, err
	}
	if rec.Keyword == "defaults" {
		n.finish = d.reportUnused(n.scope, n.finish)
	}
	return n, nil
}

func (d *Dispatcher) lookupSection(owner Context, rec *LineRecord) (SectionFunc, error) {
	h := owner.Handlers()
	fn, ok := h.section(rec.Keyword)
	if !ok {
		if names := h.sectionNames(); len(names) > 0 {
			return nil, diag.Errorf(diag.Semantic, rec.Line, "unknown section %q here (expected one of: %s)", rec.Keyword, strings.Join(names, ", "))
		}
		return nil, diag.Errorf(diag.Semantic, rec.Line, "unknown section %q here", rec.Keyword)
	}
	return fn, nil
}

// reportUnused wraps finish so that, once it has run, the frame's unread
// attributes are handed to the unused callback.
func (d *Dispatcher) reportUnused(scope *Scope, finish func() error) func() error {
	return func() error {
		if finish != nil {
			if err := finish(); err != nil {
				return err
			}
		}
		if unused := scope.Unused(); len(unused) > 0 && d.onUnused != nil {
			d.onUnused(scope.Line(), unused)
		}
		return nil
	}
}

// chain returns a finish function that runs inner, then outer.
func chain(inner, outer func() error) func() error {
	return func() error {
		if inner != nil {
			if err := inner(); err != nil {
				return err
			}
		}
		if outer != nil {
			return outer()
		}
		return nil
	}
}

// lineError turns plain handler errors into semantic errors at line, and
// fills in the line of diagnostics that lack one.
func lineError(line int, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := diag.As(err); ok {
		if de.Line == 0 {
			de.Line = line
		}
		return err
	}
	return &diag.Error{Kind: diag.Semantic, Line: line, Message: err.Error()}
}

var builtinMetas map[string]MetaFunc

func init() {
	builtinMetas = map[string]MetaFunc{
		"set":      setMeta,
		"defaults": defaultsMeta,
	}
}

// setMeta writes its attributes into the enclosing scope when it closes, so
// following siblings see the new values without an extra nesting level.
func setMeta(parent *Node, rec *LineRecord) (*Node, error) {
	if rec.HasKey {
		return nil, fmt.Errorf("'?set' does not take a key")
	}
	scope := parent.scope.Child(rec.Line, rec.Attributes)
	scope.markUsed()
	target := parent.scope
	return NewNode(Leaf(), scope, func() error {
		for _, a := range rec.Attributes {
			target.Set(a.Name, a.Value)
		}
		return nil
	}), nil
}

// defaultsMeta pushes one frame onto the enclosing context: lines nested
// under the directive are handled by that same context and inherit the
// frame. Closing the directive drops the frame without finishing the context.
func defaultsMeta(parent *Node, rec *LineRecord) (*Node, error) {
	if rec.HasKey {
		return nil, fmt.Errorf("'?defaults' does not take a key")
	}
	return NewNode(parent.ctx, parent.scope.Child(rec.Line, rec.Attributes), nil), nil
}
