// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import (
	"github.com/vk/swix/internal/diag"
)

// Builder receives the structural events produced by Parse. N is whatever
// handle the builder uses to identify an open node.
type Builder[N any] interface {
	// Open is called for every line, with the handle of its structural parent.
	Open(parent N, rec *LineRecord) (N, error)
	// Close is called exactly once per opened node, and once for the root,
	// innermost first.
	Close(node N) error
}

const unset = -1

// level is one entry of the open-node stack.
type level[N any] struct {
	indent      int // indent of the line that opened the node; unset for the root
	childIndent int // indent adopted from the first child; unset until then
	line        int
	node        N
}

// Parse turns the ordered line records into nested Open/Close calls based
// purely on indent width. The root handle is closed last, after every other
// node, on success.
func Parse[N any](records []LineRecord, root N, b Builder[N]) error {
	stack := []*level[N]{{indent: unset, childIndent: unset, node: root}}

	for i := range records {
		rec := &records[i]
		for {
			top := stack[len(stack)-1]

			// Dedent: the line is not inside top, so top is complete.
			if rec.Indent <= top.indent {
				if err := b.Close(top.node); err != nil {
					return err
				}
				stack = stack[:len(stack)-1]
				continue
			}

			if top.childIndent == unset {
				top.childIndent = rec.Indent
			}

			switch {
			case rec.Indent == top.childIndent:
				child, err := b.Open(top.node, rec)
				if err != nil {
					return err
				}
				stack = append(stack, &level[N]{indent: rec.Indent, childIndent: unset, line: rec.Line, node: child})
			case rec.Indent < top.childIndent && top.indent == unset:
				return diag.Errorf(diag.Indentation, rec.Line,
					"indentation %d does not match top-level indentation %d",
					rec.Indent, top.childIndent)
			case rec.Indent < top.childIndent:
				return diag.Errorf(diag.Indentation, rec.Line,
					"indentation %d falls between indentation %d of line %d and its children at %d",
					rec.Indent, top.indent, top.line, top.childIndent)
			default:
				// Deeper than an established child indent while no child is
				// open: every deeper line is adopted eagerly above.
				return diag.Errorf(diag.Internal, rec.Line,
					"indentation %d is deeper than established child indentation %d of line %d",
					rec.Indent, top.childIndent, top.line)
			}
			break
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if err := b.Close(top.node); err != nil {
			return err
		}
		stack = stack[:len(stack)-1]
	}
	return nil
}
